package print

import (
	"bytes"
	"context"
	"testing"

	"github.com/ZanSara/new-haystack-pipeline-draft/internal/node"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/registry"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/testutil"
	"github.com/ZanSara/new-haystack-pipeline-draft/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPrinter(t *testing.T, init value.Map) node.Node {
	t.Helper()
	r := registry.New()
	(&Module{}).Register(r)
	n, err := r.New("print", init)
	require.NoError(t, err)
	return n
}

func TestPrinter(t *testing.T) {
	data := value.Map{"value": value.Int(3), "message": value.String("hi")}

	t.Run("writes to the stdout store", func(t *testing.T) {
		var out bytes.Buffer
		n := newPrinter(t, nil)

		res, err := n.Run(context.Background(), &node.Call{
			Name:   "show",
			Data:   data,
			Stores: node.Stores{StoreName: &out},
		})
		require.NoError(t, err)
		assert.Equal(t, data, res.Payload())
		assert.Equal(t, "[show]\n      message = \"hi\"\n      value = 3\n", out.String())
	})

	t.Run("selected keys only", func(t *testing.T) {
		var out bytes.Buffer
		n := newPrinter(t, value.Map{"keys": value.List{value.String("value"), value.String("absent")}})

		_, err := n.Run(context.Background(), &node.Call{Name: "show", Data: data, Stores: node.Stores{StoreName: &out}})
		require.NoError(t, err)
		assert.Equal(t, "[show]\n      value = 3\n", out.String())
	})

	t.Run("falls back to the logger", func(t *testing.T) {
		ctx, logs := testutil.NewContext(t)
		n := newPrinter(t, nil)

		_, err := n.Run(ctx, &node.Call{Name: "show", Data: data})
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "key=message")
		assert.Contains(t, logs.String(), "key=value value=3")
	})

	t.Run("rejects non-string keys", func(t *testing.T) {
		r := registry.New()
		(&Module{}).Register(r)
		_, err := r.New("print", value.Map{"keys": value.List{value.Int(1)}})
		assert.ErrorContains(t, err, "keys must be strings")
	})
}
