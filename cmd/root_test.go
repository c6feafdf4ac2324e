package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"analyze", "retention", "dedupe", "enhance", "import", "export", "serve"} {
		assert.True(t, names[want], "command %q not registered", want)
	}
}

func TestIsXLSX(t *testing.T) {
	assert.True(t, isXLSX("data/clinics.xlsx"))
	assert.True(t, isXLSX("DATA.XLSX"))
	assert.False(t, isXLSX("clinics.csv"))
	assert.False(t, isXLSX("clinics"))
}

func TestReadClinicsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinics.csv")
	csv := "id,name,city,state\nc1,Test Clinic,Austin,TX\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0644))

	clinics, err := readClinics(path)
	require.NoError(t, err)
	require.Len(t, clinics, 1)
	assert.Equal(t, "Test Clinic", clinics[0].Name)
}

func TestReadClinicsMissingFile(t *testing.T) {
	_, err := readClinics(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}
