package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexsyn/intake/internal/model"
)

func TestSampleSubmission(t *testing.T) {
	for _, kind := range model.Kinds {
		sub, ok := sampleSubmission(kind)
		require.True(t, ok, kind)
		assert.Equal(t, kind, sub.Kind)
		assert.NotEmpty(t, sub.Form.SubmitterEmail())
	}

	_, ok := sampleSubmission("newsletter")
	assert.False(t, ok)
}

func TestPreview(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"preview", "contact", "admin", "--format", "text"})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, out.String(), "Subject: ")
	assert.Contains(t, out.String(), "Alan")
}

func TestPreview_UnknownKind(t *testing.T) {
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetArgs([]string{"preview", "newsletter", "admin"})
	assert.Error(t, rootCmd.Execute())
}
