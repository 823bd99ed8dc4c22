package io

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenesisYAMLRepository_GetGenesis(t *testing.T) {
	tests := map[string]struct {
		fs         fstest.MapFS
		path       string
		expGenesis Genesis
		expErr     bool
		errMsg     string
	}{
		"Full genesis should load successfully": {
			fs: fstest.MapFS{
				"genesis.yaml": &fstest.MapFile{
					Data: []byte(`admin: root
minters:
  - questd
pausers:
  - ops
currency:
  symbol: GLD
  name: Gold
`),
				},
			},
			path: "genesis.yaml",
			expGenesis: Genesis{
				Admin:    "root",
				Minters:  []string{"questd"},
				Pausers:  []string{"ops"},
				Currency: Currency{Symbol: "GLD", Name: "Gold"},
			},
			expErr: false,
		},
		"Missing currency should fall back to the default token": {
			fs: fstest.MapFS{
				"genesis.yaml": &fstest.MapFile{
					Data: []byte(`admin: root
`),
				},
			},
			path: "genesis.yaml",
			expGenesis: Genesis{
				Admin:    "root",
				Currency: Currency{Symbol: "QST", Name: "Quest Token"},
			},
			expErr: false,
		},
		"Missing admin should return error": {
			fs: fstest.MapFS{
				"genesis.yaml": &fstest.MapFile{
					Data: []byte(`minters: [questd]
`),
				},
			},
			path:   "genesis.yaml",
			expErr: true,
			errMsg: "invalid genesis",
		},
		"Empty minter principal should return error": {
			fs: fstest.MapFS{
				"genesis.yaml": &fstest.MapFile{
					Data: []byte(`admin: root
minters:
  - ""
`),
				},
			},
			path:   "genesis.yaml",
			expErr: true,
			errMsg: "invalid genesis",
		},
		"Missing file should return error": {
			fs:     fstest.MapFS{},
			path:   "nonexistent.yaml",
			expErr: true,
			errMsg: "reading genesis file",
		},
		"Invalid YAML should return error": {
			fs: fstest.MapFS{
				"invalid.yaml": &fstest.MapFile{
					Data: []byte(`invalid: yaml: content: {}`),
				},
			},
			path:   "invalid.yaml",
			expErr: true,
			errMsg: "parsing YAML",
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			assert := assert.New(t)
			require := require.New(t)

			repo := NewGenesisYAMLRepository(test.fs)
			genesis, err := repo.GetGenesis(context.Background(), test.path)

			if test.expErr {
				require.Error(err)
				if test.errMsg != "" {
					assert.Contains(err.Error(), test.errMsg)
				}
				return
			}

			require.NoError(err)
			assert.Equal(test.expGenesis, genesis)
		})
	}
}
