package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewDefault()

	t.Run("PrePosting", func(t *testing.T) {
		assert.Equal(t, ActionNotHandedOver, c.Classify(StatusPrePosting))
	})

	t.Run("CallInformationLine", func(t *testing.T) {
		// Matched verbatim, HTML entities included.
		assert.Equal(t, ActionFileComplaint, c.Classify(StatusCallInformationLine))
	})

	t.Run("UnknownStatusNeedsNoAction", func(t *testing.T) {
		assert.Equal(t, "", c.Classify("Delivered"))
		assert.Equal(t, "", c.Classify(""))
	})

	t.Run("NearMissDoesNotMatch", func(t *testing.T) {
		// Exact match only: a decoded variant of a known label is a
		// different status.
		decoded := "For more information please call information line CP"
		assert.Equal(t, "", c.Classify(decoded))
	})
}

func TestClassifier_FirstMatchWins(t *testing.T) {
	c := New([]Rule{
		{Status: "stalled", Action: "first"},
		{Status: "stalled", Action: "second"},
	})
	assert.Equal(t, "first", c.Classify("stalled"))
}

func TestClassifier_EmptyRuleTable(t *testing.T) {
	c := New(nil)
	assert.Equal(t, "", c.Classify(StatusPrePosting))
}
