package io

import (
	"context"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slok/blendeval/internal/model"
)

func TestMethodsYAMLRepository_GetMethods(t *testing.T) {
	tests := map[string]struct {
		fs         fstest.MapFS
		path       string
		expMethods []model.MethodDescriptor
		expErr     bool
	}{
		"Methods should load in order with default endpoints": {
			fs: fstest.MapFS{
				"methods.yaml": &fstest.MapFile{
					Data: []byte(`methods:
  - name: pso
  - name: linear
    start: /v2/linear/run/
`),
				},
			},
			path: "methods.yaml",
			expMethods: []model.MethodDescriptor{
				{Name: "pso", StartPath: "/pso/start/", ProgressPath: "/pso/progress/", StopPath: "/pso/stop/"},
				{Name: "linear", StartPath: "/v2/linear/run/", ProgressPath: "/linear/progress/", StopPath: "/linear/stop/"},
			},
		},
		"Empty methods should fail": {
			fs: fstest.MapFS{
				"methods.yaml": &fstest.MapFile{Data: []byte("methods: []\n")},
			},
			path:   "methods.yaml",
			expErr: true,
		},
		"Missing file should fail": {
			fs:     fstest.MapFS{},
			path:   "methods.yaml",
			expErr: true,
		},
		"Invalid YAML should fail": {
			fs: fstest.MapFS{
				"methods.yaml": &fstest.MapFile{Data: []byte("methods: [\n")},
			},
			path:   "methods.yaml",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewMethodsYAMLRepository(test.fs)
			methods, err := repo.GetMethods(context.Background(), test.path)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expMethods, methods)
		})
	}
}

func TestConfigurationYAMLRepository_GetConfiguration(t *testing.T) {
	tests := map[string]struct {
		fs          fstest.MapFS
		path        string
		expRefIDs   []int64
		expSettings string
		expErr      bool
	}{
		"Configuration should load keeping settings order": {
			fs: fstest.MapFS{
				"cfg.yaml": &fstest.MapFile{
					Data: []byte(`reference_ids: [7, 3]
settings:
  target:
    fe: 62.0
    sio2_max: 4.5
  linear:
    tolerance: 0.01
  genetic:
    population: 200
    elitism: true
    name: ~
`),
				},
			},
			path:        "cfg.yaml",
			expRefIDs:   []int64{7, 3},
			expSettings: `{"target":{"fe":62,"sio2_max":4.5},"linear":{"tolerance":0.01},"genetic":{"population":200,"elitism":true,"name":null}}`,
		},
		"Configuration without settings should have empty settings": {
			fs: fstest.MapFS{
				"cfg.yaml": &fstest.MapFile{Data: []byte("reference_ids: [1]\n")},
			},
			path:        "cfg.yaml",
			expRefIDs:   []int64{1},
			expSettings: `{}`,
		},
		"Settings that are not a mapping should fail": {
			fs: fstest.MapFS{
				"cfg.yaml": &fstest.MapFile{Data: []byte("settings: [1, 2]\n")},
			},
			path:   "cfg.yaml",
			expErr: true,
		},
		"Negative reference IDs should fail": {
			fs: fstest.MapFS{
				"cfg.yaml": &fstest.MapFile{Data: []byte("reference_ids: [-1]\n")},
			},
			path:   "cfg.yaml",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewConfigurationYAMLRepository(test.fs)
			cfg, err := repo.GetConfiguration(context.Background(), test.path)
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expRefIDs, cfg.ReferenceIDs)

			settings, err := json.Marshal(cfg.Settings)
			require.NoError(t, err)
			assert.Equal(t, test.expSettings, string(settings))
		})
	}
}

func TestCatalogYAMLRepository_GetReferenceItems(t *testing.T) {
	tests := map[string]struct {
		data     string
		expItems []model.ReferenceItem
		expErr   bool
	}{
		"Catalog should load": {
			data: `items:
  - id: 7
    name: PB Fines
    composition: {fe: 61.5, sio2: 3.6}
  - id: 3
    name: Newman Lump
`,
			expItems: []model.ReferenceItem{
				{ID: 7, Name: "PB Fines", Composition: map[string]float64{"fe": 61.5, "sio2": 3.6}},
				{ID: 3, Name: "Newman Lump"},
			},
		},
		"Item without name should fail": {
			data:   "items:\n  - id: 7\n",
			expErr: true,
		},
		"Duplicated items should fail": {
			data:   "items:\n  - {id: 7, name: a}\n  - {id: 7, name: b}\n",
			expErr: true,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			repo := NewCatalogYAMLRepository(fstest.MapFS{"catalog.yaml": &fstest.MapFile{Data: []byte(test.data)}})
			items, err := repo.GetReferenceItems(context.Background(), "catalog.yaml")
			if test.expErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expItems, items)
		})
	}
}
