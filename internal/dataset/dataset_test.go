package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `enrollee_id,city,city_development_index,gender,experience,education_level,training_hours,target
8949,city_103,0.92,Male,>20,Graduate,36,1.0
29725,city_40,0.776,,15,Graduate,47,0.0
11561,city_21,0.624,NA,5,,83,0.0
`

func TestReadCSVDropsIdentifierColumns(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, []string{"city", "city_development_index", "gender", "experience", "education_level", "training_hours", "target"}, ds.Columns())
	assert.False(t, ds.HasColumn("enrollee_id"))
	assert.Equal(t, 3, ds.Len())
}

func TestReadCSVFillsMissingCells(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	gender, ok := ds.Column("gender")
	require.True(t, ok)
	assert.Equal(t, []string{"Male", Unknown, Unknown}, gender)

	education, ok := ds.Column("education_level")
	require.True(t, ok)
	assert.Equal(t, []string{"Graduate", "Graduate", Unknown}, education)

	target, ok := ds.Column("target")
	require.True(t, ok)
	assert.Equal(t, []string{"1.0", "0.0", "0.0"}, target)
}

func TestColumnReturnsCopy(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	city, _ := ds.Column("city")
	city[0] = "changed"

	again, _ := ds.Column("city")
	assert.Equal(t, "city_103", again[0])
}

func TestMissingColumn(t *testing.T) {
	ds, err := New([]string{"city"}, [][]string{{"city_1"}})
	require.NoError(t, err)

	values, ok := ds.Column("target")
	assert.False(t, ok)
	assert.Nil(t, values)
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty document", input: ""},
		{name: "ragged row", input: "city,target\ncity_1,1,extra\n"},
		{name: "duplicate column", input: "city,city\na,b\n"},
		{name: "blank column name", input: "city, \na,b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsRaggedRows(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]string{{"1"}})
	assert.Error(t, err)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	ds, err := ReadCSV(strings.NewReader("\ufeffcity,target\n"))
	require.NoError(t, err)

	assert.Equal(t, 0, ds.Len())
	assert.True(t, ds.HasColumn("city"))
}

func TestLoadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aug_train.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())

	_, err = LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
