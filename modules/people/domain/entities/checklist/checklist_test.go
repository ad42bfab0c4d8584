package checklist

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewInstanceOrdersItems(t *testing.T) {
	tmpl := Template{
		ID: "tpl-1",
		Items: []TemplateItem{
			{ID: "c", Label: "Laptop", Order: 3},
			{ID: "a", Label: "Contract", Order: 1},
			{ID: "b", Label: "Badge", Order: 2},
		},
	}

	inst := NewInstance("org-1", "E100", tmpl, map[string]any{"source": "test"})

	require.Equal(t, InstanceInProgress, inst.Status)
	require.Equal(t, "tpl-1", inst.TemplateID)
	require.Len(t, inst.Items, 3)
	require.Equal(t, []string{"a", "b", "c"}, []string{inst.Items[0].ItemID, inst.Items[1].ItemID, inst.Items[2].ItemID})
	require.False(t, inst.Items[0].Completed)
	require.Equal(t, "c", tmpl.Items[0].ID)
}
