// Package config reads and writes proof parameter configuration.
package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/docker/go-units"
	"github.com/filecoin-project/go-state-types/abi"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/filecoin-project/go-storage-proofs/pkg/constants"
	"github.com/filecoin-project/go-storage-proofs/pkg/drgraph"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/porep/drg"
	"github.com/filecoin-project/go-storage-proofs/pkg/zigzag"
)

var log = logging.Logger("config")

// Config is an in memory representation of a proof parameter file.
type Config struct {
	Graph    *GraphConfig    `toml:"graph"`
	PoRep    *PoRepConfig    `toml:"porep"`
	Parallel *ParallelConfig `toml:"parallel"`
}

// GraphConfig holds the graph parameter tuple. The node count is taken from
// the first of Nodes, SectorSize and RegisteredProof that is set.
type GraphConfig struct {
	Nodes           uint64 `toml:"nodes"`
	SectorSize      string `toml:"sectorSize"`
	RegisteredProof string `toml:"registeredProof"`
	BaseDegree      uint32 `toml:"baseDegree"`
	ExpansionDegree uint32 `toml:"expansionDegree"`
	Layers          int    `toml:"layers"`
	// Seed is the hex encoded public graph seed.
	Seed string `toml:"seed"`
}

func newDefaultGraphConfig() *GraphConfig {
	return &GraphConfig{
		SectorSize:      constants.DefaultSectorSize,
		BaseDegree:      constants.DefaultBaseDegree,
		ExpansionDegree: constants.DefaultExpansionDegree,
		Layers:          constants.DefaultLayers,
		Seed:            hex.EncodeToString(make([]byte, drgraph.SeedSize)),
	}
}

// PoRepConfig holds the replication proof options.
type PoRepConfig struct {
	ChallengesCount int    `toml:"challengesCount"`
	Private         bool   `toml:"private"`
	Hasher          string `toml:"hasher"`
}

func newDefaultPoRepConfig() *PoRepConfig {
	return &PoRepConfig{
		ChallengesCount: constants.DefaultChallengesCount,
		Hasher:          constants.DefaultHasher,
	}
}

// ParallelConfig bounds worker pools.
type ParallelConfig struct {
	// Workers is the pool size, 0 selects GOMAXPROCS.
	Workers int `toml:"workers"`
}

func newDefaultParallelConfig() *ParallelConfig {
	return &ParallelConfig{}
}

// NewDefaultConfig returns a config object with all the fields filled out to
// their default values
func NewDefaultConfig() *Config {
	return &Config{
		Graph:    newDefaultGraphConfig(),
		PoRep:    newDefaultPoRepConfig(),
		Parallel: newDefaultParallelConfig(),
	}
}

// WriteFile writes the config to the given filepath.
func (cfg *Config) WriteFile(file string) error {
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(*cfg); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a config file from disk. Missing keys keep their defaults.
func ReadFile(file string) (*Config, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close() // nolint: errcheck

	cfg := NewDefaultConfig()
	if _, err := toml.DecodeReader(f, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", file)
	}
	return cfg, nil
}

// NodeCount resolves the node count of the graph.
func (gc *GraphConfig) NodeCount() (uint64, error) {
	switch {
	case gc.Nodes > 0:
		return gc.Nodes, nil
	case gc.SectorSize != "":
		size, err := units.RAMInBytes(gc.SectorSize)
		if err != nil {
			return 0, errors.Wrapf(err, "invalid sector size %q", gc.SectorSize)
		}
		return nodesForSize(uint64(size))
	case gc.RegisteredProof != "":
		proof, ok := registeredProofs[gc.RegisteredProof]
		if !ok {
			return 0, errors.Errorf("unknown registered proof %q", gc.RegisteredProof)
		}
		size, err := proof.SectorSize()
		if err != nil {
			return 0, errors.Wrapf(err, "registered proof %q", gc.RegisteredProof)
		}
		return nodesForSize(uint64(size))
	default:
		return 0, errors.New("one of nodes, sectorSize or registeredProof must be set")
	}
}

func nodesForSize(size uint64) (uint64, error) {
	if size == 0 || size%fr32.NodeSize != 0 {
		return 0, errors.Errorf("sector size %s is not a multiple of %d bytes", units.BytesSize(float64(size)), fr32.NodeSize)
	}
	return size / fr32.NodeSize, nil
}

var registeredProofs = map[string]abi.RegisteredSealProof{
	"StackedDrg2KiBV1":     abi.RegisteredSealProof_StackedDrg2KiBV1,
	"StackedDrg8MiBV1":     abi.RegisteredSealProof_StackedDrg8MiBV1,
	"StackedDrg512MiBV1":   abi.RegisteredSealProof_StackedDrg512MiBV1,
	"StackedDrg32GiBV1":    abi.RegisteredSealProof_StackedDrg32GiBV1,
	"StackedDrg64GiBV1":    abi.RegisteredSealProof_StackedDrg64GiBV1,
	"StackedDrg2KiBV1_1":   abi.RegisteredSealProof_StackedDrg2KiBV1_1,
	"StackedDrg8MiBV1_1":   abi.RegisteredSealProof_StackedDrg8MiBV1_1,
	"StackedDrg512MiBV1_1": abi.RegisteredSealProof_StackedDrg512MiBV1_1,
	"StackedDrg32GiBV1_1":  abi.RegisteredSealProof_StackedDrg32GiBV1_1,
	"StackedDrg64GiBV1_1":  abi.RegisteredSealProof_StackedDrg64GiBV1_1,
}

// SeedBytes decodes the graph seed.
func (gc *GraphConfig) SeedBytes() ([drgraph.SeedSize]byte, error) {
	var seed [drgraph.SeedSize]byte
	raw, err := hex.DecodeString(gc.Seed)
	if err != nil {
		return seed, errors.Wrap(err, "seed is not hex")
	}
	if len(raw) != drgraph.SeedSize {
		return seed, errors.Errorf("seed is %d bytes, expected %d", len(raw), drgraph.SeedSize)
	}
	copy(seed[:], raw)
	return seed, nil
}

// Validate checks the configuration describes a usable parameter set.
func (cfg *Config) Validate() error {
	nodes, err := cfg.Graph.NodeCount()
	if err != nil {
		return err
	}
	if err := drgraph.ValidateParams(nodes, cfg.Graph.BaseDegree, cfg.Graph.ExpansionDegree); err != nil {
		return err
	}
	if nodes&(nodes-1) != 0 {
		return errors.Errorf("node count %d must be a power of two", nodes)
	}
	if cfg.Graph.Layers <= 0 {
		return errors.Errorf("layers must be positive, got %d", cfg.Graph.Layers)
	}
	if _, err := cfg.Graph.SeedBytes(); err != nil {
		return err
	}
	if cfg.PoRep.ChallengesCount <= 0 {
		return errors.Errorf("challengesCount must be positive, got %d", cfg.PoRep.ChallengesCount)
	}
	if _, err := hasher.ByName(cfg.PoRep.Hasher); err != nil {
		return err
	}
	if cfg.Parallel.Workers < 0 {
		return errors.Errorf("workers must not be negative, got %d", cfg.Parallel.Workers)
	}
	return nil
}

// SetupParams returns the DRG PoRep setup parameters described by cfg.
func (cfg *Config) SetupParams() (drg.SetupParams, error) {
	if err := cfg.Validate(); err != nil {
		return drg.SetupParams{}, err
	}
	nodes, _ := cfg.Graph.NodeCount()
	seed, _ := cfg.Graph.SeedBytes()

	log.Debugw("proof parameters", "nodes", nodes, "size", units.BytesSize(float64(nodes*fr32.NodeSize)),
		"baseDegree", cfg.Graph.BaseDegree, "expansionDegree", cfg.Graph.ExpansionDegree,
		"challenges", cfg.PoRep.ChallengesCount, "hasher", cfg.PoRep.Hasher)

	return drg.SetupParams{
		Drg: drg.DrgParams{
			Nodes:           nodes,
			Degree:          cfg.Graph.BaseDegree,
			ExpansionDegree: cfg.Graph.ExpansionDegree,
			Seed:            seed,
		},
		Private:         cfg.PoRep.Private,
		ChallengesCount: cfg.PoRep.ChallengesCount,
		Workers:         cfg.Parallel.Workers,
	}, nil
}

// LayeredGraph builds the layered graph described by cfg, one layer per
// graph.layers, using hasher H for its trees.
func LayeredGraph[H hasher.Hasher](cfg *Config) (*zigzag.LayeredGraph[H], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	nodes, _ := cfg.Graph.NodeCount()
	seed, _ := cfg.Graph.SeedBytes()
	return zigzag.New[H](nodes, cfg.Graph.BaseDegree, cfg.Graph.ExpansionDegree, cfg.Graph.Layers, seed)
}

// lookup walks the toml tags of key ("graph.nodes", "porep") down from cfg
// and applies f to the field it names.
func (cfg *Config) lookup(key string, f func(field reflect.Value) (interface{}, error)) (interface{}, error) {
	if key == "" {
		return nil, errors.New("empty key is invalid")
	}
	v := reflect.Indirect(reflect.ValueOf(cfg))
	parts := strings.Split(key, ".")
	for j, part := range parts {
		if v.Kind() != reflect.Struct {
			return nil, errors.Errorf("key: %s invalid for config", key)
		}
		idx := fieldByTag(v.Type(), part)
		if idx < 0 {
			return nil, errors.Errorf("key: %s invalid for config", key)
		}
		v = v.Field(idx)
		if j == len(parts)-1 {
			return f(v)
		}
		v = reflect.Indirect(v)
	}
	return nil, errors.Errorf("key: %s invalid for config", key)
}

func fieldByTag(t reflect.Type, tag string) int {
	for i := 0; i < t.NumField(); i++ {
		if strings.Split(t.Field(i).Tag.Get("toml"), ",")[0] == tag {
			return i
		}
	}
	return -1
}

// decodeField unmarshals tomlVal into a fresh value of type t. Tables take
// their body ("nodes = 8"), anything else a bare toml value ("8").
func decodeField(key, tomlVal string, t reflect.Type) (reflect.Value, error) {
	parts := strings.Split(key, ".")
	name := parts[len(parts)-1]

	doc := fmt.Sprintf("%s=%s", name, tomlVal)
	if t.Kind() == reflect.Struct && !strings.HasPrefix(strings.TrimSpace(tomlVal), "{") {
		doc = fmt.Sprintf("[%s]\n%s", name, tomlVal)
	}

	recv := reflect.New(reflect.StructOf([]reflect.StructField{{
		Name: "Field",
		Type: t,
		Tag:  reflect.StructTag(`toml:"` + name + `"`),
	}}))
	if _, err := toml.Decode(doc, recv.Interface()); err != nil {
		return reflect.Value{}, errors.Wrapf(err, "input could not be marshaled to sub-config at: %s", key)
	}
	return recv.Elem().Field(0), nil
}

// Set replaces the value at key with the toml encoded tomlVal and returns
// the new value.
func (cfg *Config) Set(key string, tomlVal string) (interface{}, error) {
	return cfg.lookup(key, func(field reflect.Value) (interface{}, error) {
		t := field.Type()
		isPtr := t.Kind() == reflect.Ptr
		if isPtr {
			t = t.Elem()
		}
		val, err := decodeField(key, tomlVal, t)
		if err != nil {
			return nil, err
		}
		if isPtr {
			ptr := reflect.New(t)
			ptr.Elem().Set(val)
			val = ptr
		}
		field.Set(val)
		return field.Interface(), nil
	})
}

// Get returns the value at key, e.g. "graph.layers" or "parallel".
func (cfg *Config) Get(key string) (interface{}, error) {
	return cfg.lookup(key, func(field reflect.Value) (interface{}, error) {
		return field.Interface(), nil
	})
}
