package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already normal", input: "last name", expected: "last name"},
		{name: "mixed case and padding", input: "  Date Of Birth ", expected: "date of birth"},
		{name: "byte order mark", input: "\ufeffLast Name", expected: "last name"},
		{name: "blank", input: "   ", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeKey(tt.input))
		})
	}
}

func TestIndexKeys(t *testing.T) {
	t.Run("keeps first occurrence", func(t *testing.T) {
		index := IndexKeys([]string{" Last Name ", "DOB", "last name"})
		assert.Equal(t, map[string]int{"last name": 0, "dob": 1}, index)
	})

	t.Run("skips blank cells", func(t *testing.T) {
		index := IndexKeys([]string{"", "National Insurance Number"})
		assert.Equal(t, map[string]int{"national insurance number": 1}, index)
	})
}

func TestFirstMissing(t *testing.T) {
	required := []string{"last name", "date of birth", "national insurance number"}

	t.Run("all present in any order", func(t *testing.T) {
		index := IndexKeys([]string{"National Insurance Number", "Last Name", "Date of Birth"})
		_, missing := FirstMissing(index, required)
		assert.False(t, missing)
	})

	t.Run("reports first absent key in required order", func(t *testing.T) {
		index := IndexKeys([]string{"Last Name", "Surname", "NINO"})
		key, missing := FirstMissing(index, required)
		assert.True(t, missing)
		assert.Equal(t, "date of birth", key)
	})
}
