package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Liutianci99/grad-pilipala/internal/apiclient"
	"github.com/Liutianci99/grad-pilipala/internal/console"
	"github.com/Liutianci99/grad-pilipala/internal/validation"
	"github.com/Liutianci99/grad-pilipala/internal/vocabulary"
	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
)

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "console",
		Short: "Logistics console client",
		Long: `Drive the logistics backend as one of its four roles.

The session token lives in the configured session backend. With the memory
backend a token only survives inside "console shell"; with the redis backend
every invocation sharing CONSOLE_SESSION_SCOPE shares one session.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context(), cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "dotenv file to load when present")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newOpenCmd(a),
		newRoutesCmd(a),
		newOrdersCmd(a),
		newBatchesCmd(a),
		newCreateBatchCmd(a),
		newStockInCmd(a),
		newPublishCmd(a),
		newShellCmd(a),
	)
	return root
}

func newLoginCmd(a *app) *cobra.Command {
	var creds console.Credentials
	var role string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			creds.Role = vocabulary.Role(role)
			user, err := a.service.Login(cmd.Context(), creds)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已登录: %s (%s)\n", user.Username, user.Role.Text())
			if user.WarehouseID != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "仓库: %s (#%d)\n", user.WarehouseName, *user.WarehouseID)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&creds.Username, "username", "u", "", "account name")
	cmd.Flags().StringVarP(&creds.Password, "password", "p", "", "account password")
	cmd.Flags().StringVarP(&role, "role", "r", string(vocabulary.RoleConsumer), "admin, merchant, consumer or driver")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	var wholeScope bool
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Drop the session token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if wholeScope {
				if a.scope == nil {
					return errors.New("--scope needs the redis session backend")
				}
				if err := a.scope.ClearScope(cmd.Context()); err != nil {
					return err
				}
			} else if err := a.service.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "已退出登录")
			return nil
		},
	}
	cmd.Flags().BoolVar(&wholeScope, "scope", false, "clear every key of the session scope")
	return cmd
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Navigate to a console view through the guard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.router.Push(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			renderLocation(cmd.OutOrStdout(), args[0], loc)
			return nil
		},
	}
}

func newRoutesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the console's routes",
		RunE: func(cmd *cobra.Command, _ []string) error {
			renderRoutes(cmd.OutOrStdout(), a.table)
			return nil
		},
	}
}

func newOrdersCmd(a *app) *cobra.Command {
	var customerID, status int
	var search string
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List a customer's orders",
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter := console.OrderFilter{Search: search}
			if status >= 0 {
				s := vocabulary.OrderStatus(status)
				filter.Status = &s
			}
			orders, err := a.service.MyOrders(cmd.Context(), customerID, filter)
			if err != nil {
				return err
			}
			renderOrders(cmd.OutOrStdout(), orders)
			return nil
		},
	}
	cmd.Flags().IntVar(&customerID, "customer-id", 0, "customer account id")
	cmd.Flags().IntVar(&status, "status", -1, "order status code, -1 for all")
	cmd.Flags().StringVar(&search, "search", "", "product name filter")
	_ = cmd.MarkFlagRequired("customer-id")
	return cmd
}

func newBatchesCmd(a *app) *cobra.Command {
	var driverID int64
	var warehouseID int
	cmd := &cobra.Command{
		Use:   "batches",
		Short: "List a driver's delivery batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var warehouse *int
			if warehouseID > 0 {
				warehouse = &warehouseID
			}
			batches, err := a.service.DeliveryBatches(cmd.Context(), driverID, warehouse)
			if err != nil {
				return err
			}
			renderBatches(cmd.OutOrStdout(), batches)
			return nil
		},
	}
	cmd.Flags().Int64Var(&driverID, "driver-id", 0, "driver account id")
	cmd.Flags().IntVar(&warehouseID, "warehouse-id", 0, "warehouse id, 0 for all")
	_ = cmd.MarkFlagRequired("driver-id")
	return cmd
}

func newCreateBatchCmd(a *app) *cobra.Command {
	var driverID int64
	var orderIDs []int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "create-batch",
		Short: "Group picked-up orders into a delivery batch",
		RunE: func(cmd *cobra.Command, _ []string) error {
			created, err := a.service.CreateDeliveryBatch(cmd.Context(), driverID, orderIDs, timeout)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "批次 #%d: %d 单, %s, 约 %s\n",
				created.BatchID, created.OrderCount,
				formatDistance(&created.TotalDistance), formatDuration(&created.TotalDuration))
			fmt.Fprintf(cmd.OutOrStdout(), "配送顺序: %v\n", created.StopOrder)
			return nil
		},
	}
	cmd.Flags().Int64Var(&driverID, "driver-id", 0, "driver account id")
	cmd.Flags().IntSliceVar(&orderIDs, "orders", nil, "order ids, comma separated")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "override the request timeout")
	_ = cmd.MarkFlagRequired("driver-id")
	return cmd
}

func newStockInCmd(a *app) *cobra.Command {
	var userID int
	var form validation.StockInForm
	var imagePath string
	cmd := &cobra.Command{
		Use:   "stock-in",
		Short: "Stock a product with its image",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if imagePath != "" {
				content, err := os.ReadFile(imagePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}
				form.Image = &validation.Attachment{
					Filename:    filepath.Base(imagePath),
					ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(imagePath))),
					Content:     content,
				}
			}
			item, err := a.service.SubmitStockIn(cmd.Context(), userID, form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已入库: #%d %s x%d\n", item.ProductID, item.ProductName, item.Quantity)
			return nil
		},
	}
	cmd.Flags().IntVar(&userID, "user-id", 0, "merchant account id")
	cmd.Flags().IntVar(&form.WarehouseID, "warehouse-id", 0, "target warehouse")
	cmd.Flags().StringVar(&form.ProductName, "name", "", "product name")
	cmd.Flags().IntVar(&form.Quantity, "quantity", 0, "quantity")
	cmd.Flags().StringVar(&imagePath, "image", "", "product image file")
	return cmd
}

func newPublishCmd(a *app) *cobra.Command {
	var form validation.ListingForm
	var stock int
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish a stocked product to the mall",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if stock >= 0 {
				form.Stock = &stock
			}
			listing, err := a.service.PublishListing(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "已上架: #%d %s x%d ¥%.2f\n",
				listing.ProductID, listing.ProductName, listing.AvailableQuantity, listing.Price)
			return nil
		},
	}
	cmd.Flags().IntVar(&form.ProductID, "product-id", 0, "inventory product id")
	cmd.Flags().StringVar(&form.Description, "description", "", "listing description")
	cmd.Flags().IntVar(&form.ListingQuantity, "quantity", 0, "quantity to list")
	cmd.Flags().IntVar(&stock, "stock", -1, "known stock, -1 when unknown")
	cmd.Flags().Float64Var(&form.ListingPrice, "price", 0, "unit price")
	return cmd
}

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run commands against one session until EOF or exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				sub := newRootCmd(a)
				sub.SetArgs(strings.Fields(line))
				sub.SetIn(cmd.InOrStdin())
				sub.SetOut(cmd.OutOrStdout())
				sub.SetErr(cmd.ErrOrStderr())
				if err := sub.ExecuteContext(cmd.Context()); err != nil {
					reportError(cmd.ErrOrStderr(), err)
				}
			}
			return scanner.Err()
		},
	}
}

// reportError prints failures the notifier has not shown yet.
func reportError(w io.Writer, err error) {
	if _, ok := apiclient.AsError(err); ok {
		return
	}
	for _, code := range []dErrors.Code{dErrors.CodeRejected, dErrors.CodeUnauthorized, dErrors.CodeValidation} {
		if dErrors.HasCode(err, code) {
			return
		}
	}
	fmt.Fprintln(w, "Error:", err)
}
