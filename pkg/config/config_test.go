package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/filecoin-project/go-storage-proofs/pkg/constants"
	"github.com/filecoin-project/go-storage-proofs/pkg/drgraph"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	tf "github.com/filecoin-project/go-storage-proofs/pkg/testhelpers/testflags"
)

func TestDefaults(t *testing.T) {
	tf.UnitTest(t)

	cfg := NewDefaultConfig()
	require.NoError(t, cfg.Validate())

	nodes, err := cfg.Graph.NodeCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(64), nodes)

	sp, err := cfg.SetupParams()
	require.NoError(t, err)
	assert.Equal(t, uint64(64), sp.Drg.Nodes)
	assert.Equal(t, uint32(constants.DefaultBaseDegree), sp.Drg.Degree)
	assert.Equal(t, uint32(constants.DefaultExpansionDegree), sp.Drg.ExpansionDegree)
	assert.Equal(t, constants.DefaultChallengesCount, sp.ChallengesCount)
	assert.Equal(t, [drgraph.SeedSize]byte{}, sp.Drg.Seed)
}

func TestWriteReadRoundTrip(t *testing.T) {
	tf.UnitTest(t)

	dir := t.TempDir()
	file := filepath.Join(dir, "proofs.toml")

	cfg := NewDefaultConfig()
	cfg.Graph.Nodes = 128
	cfg.PoRep.Private = true
	cfg.Parallel.Workers = 3
	require.NoError(t, cfg.WriteFile(file))

	raw, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[graph]")
	assert.Contains(t, string(raw), "challengesCount = 2")

	got, err := ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestReadFileKeepsDefaults(t *testing.T) {
	tf.UnitTest(t)

	file := filepath.Join(t.TempDir(), "proofs.toml")
	require.NoError(t, os.WriteFile(file, []byte("[porep]\nhasher = \"sha256\"\n"), 0644))

	cfg, err := ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "sha256", cfg.PoRep.Hasher)
	assert.Equal(t, constants.DefaultChallengesCount, cfg.PoRep.ChallengesCount)
	assert.Equal(t, constants.DefaultLayers, cfg.Graph.Layers)

	require.NoError(t, os.WriteFile(file, []byte("[graph\n"), 0644))
	_, err = ReadFile(file)
	assert.Error(t, err)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestNodeCount(t *testing.T) {
	tf.UnitTest(t)

	t.Run("nodes wins", func(t *testing.T) {
		gc := &GraphConfig{Nodes: 8, SectorSize: "1MiB", RegisteredProof: "StackedDrg2KiBV1"}
		n, err := gc.NodeCount()
		require.NoError(t, err)
		assert.Equal(t, uint64(8), n)
	})

	t.Run("sector size", func(t *testing.T) {
		gc := &GraphConfig{SectorSize: "1MiB"}
		n, err := gc.NodeCount()
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<15), n)
	})

	t.Run("registered proof", func(t *testing.T) {
		gc := &GraphConfig{RegisteredProof: "StackedDrg8MiBV1_1"}
		n, err := gc.NodeCount()
		require.NoError(t, err)
		assert.Equal(t, uint64(8<<20/32), n)
	})

	t.Run("errors", func(t *testing.T) {
		for _, gc := range []*GraphConfig{
			{},
			{SectorSize: "lots"},
			{SectorSize: "33"},
			{RegisteredProof: "StackedDrg3KiBV1"},
		} {
			_, err := gc.NodeCount()
			assert.Error(t, err, "%+v", gc)
		}
	})
}

func TestValidate(t *testing.T) {
	tf.UnitTest(t)

	cases := map[string]func(*Config){
		"degree too large":  func(c *Config) { c.Graph.Nodes = 8; c.Graph.BaseDegree = 4; c.Graph.ExpansionDegree = 4 },
		"not power of two":  func(c *Config) { c.Graph.Nodes = 96 },
		"no layers":         func(c *Config) { c.Graph.Layers = 0 },
		"short seed":        func(c *Config) { c.Graph.Seed = "0102" },
		"bad seed":          func(c *Config) { c.Graph.Seed = "zz" },
		"no challenges":     func(c *Config) { c.PoRep.ChallengesCount = 0 },
		"unknown hasher":    func(c *Config) { c.PoRep.Hasher = "md5" },
		"negative workers":  func(c *Config) { c.Parallel.Workers = -1 },
		"zero base degree":  func(c *Config) { c.Graph.BaseDegree = 0 },
		"missing node size": func(c *Config) { c.Graph.SectorSize = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
			_, err := cfg.SetupParams()
			assert.Error(t, err)
		})
	}
}

func TestGetSet(t *testing.T) {
	tf.UnitTest(t)

	cfg := NewDefaultConfig()

	v, err := cfg.Get("graph.layers")
	require.NoError(t, err)
	assert.Equal(t, constants.DefaultLayers, v)

	v, err = cfg.Set("graph.layers", "7")
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	assert.Equal(t, 7, cfg.Graph.Layers)

	_, err = cfg.Set("porep.hasher", `"blake2s"`)
	require.NoError(t, err)
	assert.Equal(t, "blake2s", cfg.PoRep.Hasher)

	_, err = cfg.Set("parallel", "workers = 5")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Parallel.Workers)

	_, err = cfg.Set("porep", `{ challengesCount = 9, private = true }`)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.PoRep.ChallengesCount)
	assert.True(t, cfg.PoRep.Private)

	got, err := cfg.Get("porep")
	require.NoError(t, err)
	assert.Equal(t, cfg.PoRep, got)

	_, err = cfg.Get("graph.nope")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
	_, err = cfg.Get("graph.layers.more")
	assert.Error(t, err)
	_, err = cfg.Set("graph.layers", `"seven"`)
	assert.Error(t, err)
}

func TestLayeredGraph(t *testing.T) {
	tf.UnitTest(t)

	cfg := NewDefaultConfig()
	_, err := cfg.Set("graph.layers", "3")
	require.NoError(t, err)

	lg, err := LayeredGraph[hasher.Sha256](cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, lg.Layers())
	assert.Equal(t, uint64(64), lg.Size())
	assert.Equal(t, uint32(constants.DefaultBaseDegree+constants.DefaultExpansionDegree), lg.Degree())

	even, err := lg.Parents(10, 0)
	require.NoError(t, err)
	odd, err := lg.Parents(10, 1)
	require.NoError(t, err)
	assert.NotEqual(t, even, odd)

	cfg.Graph.Layers = 0
	_, err = LayeredGraph[hasher.Sha256](cfg)
	assert.Error(t, err)
}
