package matching_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MrJamesThe3rd/receipts/internal/matching"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *matching.Config)
		wantErr bool
	}{
		{name: "Defaults", mutate: func(*matching.Config) {}},
		{name: "MerchantOutweighsAmount", mutate: func(c *matching.Config) { c.MerchantWeight = 0.6 }, wantErr: true},
		{name: "MerchantOutweighsDate", mutate: func(c *matching.Config) { c.DateWeight = 0.1 }, wantErr: true},
		{name: "NegativeWeight", mutate: func(c *matching.Config) { c.AmountWeight = -1 }, wantErr: true},
		{name: "AllZero", mutate: func(c *matching.Config) {
			c.AmountWeight, c.DateWeight, c.MerchantWeight = 0, 0, 0
		}, wantErr: true},
		{name: "NearMissReachesExact", mutate: func(c *matching.Config) { c.NearMissCeiling = 1 }, wantErr: true},
		{name: "FuzzyOverlapsContainment", mutate: func(c *matching.Config) { c.FuzzyCeiling = 0.75 }, wantErr: true},
		{name: "MinOutOfRange", mutate: func(c *matching.Config) { c.MinConfidence = 1.2 }, wantErr: true},
		{name: "EqualWeights", mutate: func(c *matching.Config) {
			c.AmountWeight, c.DateWeight, c.MerchantWeight = 1, 1, 1
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := matching.DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
