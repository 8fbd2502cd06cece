package logger

import (
	"testing"

	logger "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer L.SetLevel(L.GetLevel())

	require.NoError(t, SetLevel("debug"))
	require.Equal(t, logger.DebugLevel, L.GetLevel())
	require.Error(t, SetLevel("loud"))
	require.Equal(t, logger.DebugLevel, L.GetLevel())
}
