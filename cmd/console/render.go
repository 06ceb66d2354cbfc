package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Liutianci99/grad-pilipala/internal/console"
	"github.com/Liutianci99/grad-pilipala/internal/navigation"
	"github.com/Liutianci99/grad-pilipala/internal/vocabulary"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	noteStyle   = lipgloss.NewStyle().Faint(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func renderOrders(w io.Writer, orders []console.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, noteStyle.Render("暂无订单"))
		return
	}
	t := newTable("订单号", "商品", "数量", "金额", "状态", "下单日期")
	for _, o := range orders {
		t.Row(
			strconv.Itoa(o.OrderID),
			o.ProductName,
			strconv.Itoa(o.Quantity),
			fmt.Sprintf("¥%.2f", o.TotalAmount),
			o.StatusText(),
			o.OrderDate(),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func renderBatches(w io.Writer, batches []console.DeliveryBatch) {
	if len(batches) == 0 {
		fmt.Fprintln(w, noteStyle.Render("暂无配送批次"))
		return
	}
	t := newTable("批次", "状态", "订单", "里程", "预计用时", "创建日期")
	for _, b := range batches {
		ids := make([]string, 0, len(b.Orders))
		for _, o := range b.Orders {
			ids = append(ids, strconv.Itoa(o.OrderID))
		}
		t.Row(
			strconv.Itoa(b.BatchID),
			b.StatusText(),
			strings.Join(ids, ","),
			formatDistance(b.TotalDistance),
			formatDuration(b.TotalDuration),
			vocabulary.FormatDate(b.CreatedAt),
		)
	}
	fmt.Fprintln(w, t.Render())
}

func renderRoutes(w io.Writer, routes *navigation.Table) {
	t := newTable("路径", "名称", "登录")
	for _, pattern := range routes.Patterns() {
		loc := routes.Resolve(pattern)
		auth := "否"
		if loc.IsProtected() {
			auth = "是"
		}
		t.Row(pattern, loc.Name, auth)
	}
	fmt.Fprintln(w, t.Render())
}

func renderLocation(w io.Writer, requested string, loc navigation.Location) {
	if loc.Path != requested {
		fmt.Fprintln(w, noteStyle.Render(fmt.Sprintf("%s → %s", requested, loc.Path)))
	}
	fmt.Fprintln(w, loc.Path)
}

// formatDistance renders meters as kilometers.
func formatDistance(meters *int) string {
	if meters == nil {
		return vocabulary.Unknown
	}
	return fmt.Sprintf("%.1f km", float64(*meters)/1000)
}

func formatDuration(seconds *int) string {
	if seconds == nil {
		return vocabulary.Unknown
	}
	return fmt.Sprintf("%d 分钟", (*seconds+59)/60)
}
