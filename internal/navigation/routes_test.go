package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "github.com/Liutianci99/grad-pilipala/pkg/domain-errors"
)

func defaultTable(t *testing.T) *Table {
	t.Helper()
	table, err := NewTable(DefaultRoutes())
	require.NoError(t, err)
	return table
}

func TestDefaultRoutesAreValid(t *testing.T) {
	table := defaultTable(t)
	require.NoError(t, table.Validate())
	assert.Len(t, table.Patterns(), 22)
}

func TestResolve(t *testing.T) {
	table := defaultTable(t)

	t.Run("login is public", func(t *testing.T) {
		loc := table.Resolve("/")
		assert.Equal(t, RouteLogin, loc.Name)
		assert.False(t, loc.IsProtected())
	})

	t.Run("home is protected", func(t *testing.T) {
		loc := table.Resolve("/demo")
		assert.Equal(t, RouteHome, loc.Name)
		assert.True(t, loc.IsProtected())
	})

	t.Run("leaves inherit protection", func(t *testing.T) {
		loc := table.Resolve("/merchant/stock-in")
		assert.True(t, loc.Matched())
		assert.Empty(t, loc.Name)
		assert.True(t, loc.IsProtected())
	})

	t.Run("captures params", func(t *testing.T) {
		loc := table.Resolve("/driver/delivery-batch-detail/42")
		assert.Equal(t, "/driver/delivery-batch-detail/:batchId", loc.Pattern)
		assert.Equal(t, map[string]string{"batchId": "42"}, loc.Params)

		loc = table.Resolve("/consumer/logistics-query/ORD-9?tab=map")
		assert.Equal(t, "ORD-9", loc.Params["orderId"])
		assert.Equal(t, "/consumer/logistics-query/ORD-9", loc.Path)
	})

	t.Run("static route wins over missing param", func(t *testing.T) {
		loc := table.Resolve("/merchant/logistics-query")
		assert.Equal(t, "/merchant/logistics-query", loc.Pattern)
		assert.Nil(t, loc.Params)
	})

	t.Run("unknown path is protected", func(t *testing.T) {
		loc := table.Resolve("/nowhere")
		assert.False(t, loc.Matched())
		assert.True(t, loc.IsProtected())
	})
}

func TestRelativeChildPaths(t *testing.T) {
	table, err := NewTable([]Route{
		{Name: "shell", Path: "/app", Children: []Route{{Name: "inbox", Path: "inbox"}}},
	})
	require.NoError(t, err)

	loc := table.Resolve("/app/inbox")
	assert.Equal(t, "inbox", loc.Name)
	assert.True(t, loc.IsProtected())
}

func TestValidate(t *testing.T) {
	t.Run("second public route is rejected", func(t *testing.T) {
		routes := append(DefaultRoutes(), Route{Name: "about", Path: "/about", RequiresAuth: Public()})
		table, err := NewTable(routes)
		require.NoError(t, err)

		err = table.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("public child is rejected", func(t *testing.T) {
		table, err := NewTable([]Route{
			{Name: RouteLogin, Path: "/", RequiresAuth: Public()},
			{Name: RouteHome, Path: "/demo", Children: []Route{{Path: "/open", RequiresAuth: Public()}}},
		})
		require.NoError(t, err)
		assert.Error(t, table.Validate())
	})

	t.Run("missing login", func(t *testing.T) {
		table, err := NewTable([]Route{{Name: RouteHome, Path: "/demo"}})
		require.NoError(t, err)
		de, ok := dErrors.Is(table.Validate())
		require.True(t, ok)
		assert.Contains(t, de.Details, "login route missing")
	})

	t.Run("duplicate names", func(t *testing.T) {
		_, err := NewTable([]Route{{Name: "a", Path: "/a"}, {Name: "a", Path: "/b"}})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}
