package abstract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTableID(t *testing.T) {
	parsed, err := ParseTableID("dbo.orders")
	require.NoError(t, err)
	require.Equal(t, TableID{Namespace: "dbo", Name: "orders"}, parsed)

	parsed, err = ParseTableID("[sales].[order details]")
	require.NoError(t, err)
	require.Equal(t, TableID{Namespace: "sales", Name: "order details"}, parsed)

	parsed, err = ParseTableID("orders")
	require.NoError(t, err)
	require.Equal(t, TableID{Namespace: "dbo", Name: "orders"}, parsed)

	parsed, err = ParseTableID("[dbo].[weird.name]")
	require.NoError(t, err)
	require.Equal(t, TableID{Namespace: "dbo", Name: "weird.name"}, parsed)
}

func TestParseTableIDErrors(t *testing.T) {
	_, err := ParseTableID("")
	require.Error(t, err)

	_, err = ParseTableID("a.b.c")
	require.Error(t, err)

	_, err = ParseTableID("dbo.")
	require.Error(t, err)

	_, err = ParseTableID("[dbo.orders")
	require.Error(t, err)
}

func TestTableIDRendering(t *testing.T) {
	id := TableID{Namespace: "dbo", Name: "orders"}
	require.Equal(t, "dbo.orders", id.String())
	require.Equal(t, "[dbo].[orders]", id.Fqtn())
}
