package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyRange(t *testing.T) {
	tests := []struct {
		raw  string
		want Bucket
	}{
		{"acima de 48h", BucketAbove48h},
		{"48+", BucketAbove48h},
		{"> 48 horas", BucketAbove48h},
		{"50h atraso", BucketAbove48h},
		{"24 e 48h", Bucket24to48h},
		{"ENTRE 24 E 48H", Bucket24to48h},
		{"12 e 24h", Bucket12to24h},
		{"6 e 12h", Bucket6to12h},
		{"1 e 6h", Bucket1to6h},
		{"0 e 1h", Bucket0to1h},
		{"  0 E 1H  ", Bucket0to1h},
		{"48h", BucketAbove48h},
		{"24h", Bucket12to24h},
		{"12h", Bucket6to12h},
		{"6h", Bucket1to6h},
		{"1h", Bucket0to1h},
		{"30h", Bucket24to48h},
		{"", BucketNoInfo},
		{"sem dados", BucketNoInfo},
		{"3 dias", BucketNoInfo},
		{"2 dias de atraso", BucketNoInfo},
		{"5 dias", BucketNoInfo},
		{"0", BucketNoInfo},
		{"3,5 horas", Bucket1to6h},
		{"50 hrs", BucketAbove48h},
		{"2 hours late", Bucket1to6h},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyRange(tt.raw), tt.raw)
	}
}

func TestClassifyRangeEarlierRuleWins(t *testing.T) {
	// mentions 1 and 6 but also 12, so the 6-12 rule fires first
	assert.Equal(t, Bucket6to12h, ClassifyRange("16 a 12"))
	// mentions 24 and 48 but also "+"
	assert.Equal(t, BucketAbove48h, ClassifyRange("24-48+"))
}

func TestClassifyRangeIsTotal(t *testing.T) {
	valid := map[Bucket]bool{BucketNoInfo: true}
	for _, b := range TimeBuckets {
		valid[b] = true
	}

	for _, raw := range []string{"", " ", "x", "0", "99999", "-", "1,5h", "∞", "48-", "abc123"} {
		assert.True(t, valid[ClassifyRange(raw)], raw)
	}
}
