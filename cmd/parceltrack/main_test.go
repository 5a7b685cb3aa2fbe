package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rshade/parceltrack/internal/cli"
)

func TestMainComponents(t *testing.T) {
	t.Run("version default", func(t *testing.T) {
		assert.NotEmpty(t, version)
	})

	t.Run("cli root command", func(t *testing.T) {
		root := cli.NewRootCmd(version)
		assert.NotNil(t, root)
		assert.Equal(t, "parceltrack", root.Use)
	})
}
