package matching_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/receipts/internal/matching"
)

func TestService_Matcher(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(m *matching.MockRepository)
		in        string
		want      string
	}{
		{
			name: "UsesLearnedAliases",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().ListAliases(gomock.Any()).Return(map[string]string{"cnt lx": "continente"}, nil)
			},
			in:   "CNT LX 1234",
			want: "continente",
		},
		{
			name: "FallsBackToBuiltins",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().ListAliases(gomock.Any()).Return(nil, errors.New("db down"))
			},
			in:   "WMT SUPERCENTER",
			want: "walmart",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := matching.NewService(repo, matching.DefaultConfig(), nil)
			m := svc.Matcher(context.Background())

			assert.Equal(t, tt.want, m.Normalizer().Normalize(tt.in))
			assert.Equal(t, matching.DefaultConfig().MaxDaysApart, m.Config().MaxDaysApart)
		})
	}
}

func TestService_Learn(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		merchant  string
		setupMock func(m *matching.MockRepository)
		wantErr   bool
	}{
		{
			name:     "StoresNormalizedPair",
			raw:      "AMZN Mktp US*2K3",
			merchant: "Amazon",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateAlias(gomock.Any(), "amzn mktp us 2k3", "amazon").Return(nil)
			},
		},
		{
			name:      "SkipsIdentical",
			raw:       "COFFEE HUT #4",
			merchant:  "Coffee Hut",
			setupMock: func(m *matching.MockRepository) {},
		},
		{
			name:      "SkipsEmpty",
			raw:       "  ",
			merchant:  "Coffee Hut",
			setupMock: func(m *matching.MockRepository) {},
		},
		{
			name:     "WrapsStoreError",
			raw:      "PD LISBOA",
			merchant: "Pingo Doce",
			setupMock: func(m *matching.MockRepository) {
				m.EXPECT().CreateAlias(gomock.Any(), "pd lisboa", "pingo doce").Return(errors.New("boom"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := matching.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := matching.NewService(repo, matching.DefaultConfig(), nil)

			err := svc.Learn(context.Background(), tt.raw, tt.merchant)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}
