package utils_test

import (
	"testing"

	"github.com/jrsteele09/impact-portal/internal/utils"
	"github.com/stretchr/testify/require"
)

func TestPtr(t *testing.T) {
	v := 42
	p := utils.Ptr(v)
	*p = 7
	require.Equal(t, 42, v)
	require.Equal(t, 7, *p)
}

func TestToStringSlice(t *testing.T) {
	require.Equal(t, []string{"admin", "donor"}, utils.ToStringSlice([]any{"admin", 3, "donor", nil}))
	require.Empty(t, utils.ToStringSlice(nil))
}
