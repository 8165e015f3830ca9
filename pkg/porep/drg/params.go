// Package drg is proof of replication over a single depth robust graph,
// together with the assembly of its proofs into succinct proof inputs.
package drg

import (
	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/drgraph"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/gadgets"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/por"
	"github.com/filecoin-project/go-storage-proofs/pkg/zigzag"
)

var log = logging.Logger("porep/drg")

// DrgParams is the graph parameter tuple.
type DrgParams struct {
	Nodes           uint64
	Degree          uint32
	ExpansionDegree uint32
	Seed            [drgraph.SeedSize]byte
}

// SetupParams configure a scheme instance.
type SetupParams struct {
	Drg             DrgParams
	Private         bool
	ChallengesCount int
	// Workers bounds per challenge parallelism; 0 selects the default.
	Workers int
	// ParentCacheSize is the number of parent sets memoised across
	// replication, proving and extraction. 0 selects the default, a negative
	// size disables the cache.
	ParentCacheSize int
}

// PublicParams are shared by prover and verifier.
type PublicParams[H hasher.Hasher] struct {
	Graph           drgraph.Graph
	Private         bool
	ChallengesCount int
	Workers         int
}

// Setup builds the public parameters. A zero expansion degree selects the
// bucket graph, anything else the forward zigzag graph.
func Setup[H hasher.Hasher](sp SetupParams) (*PublicParams[H], error) {
	if sp.ChallengesCount <= 0 {
		return nil, xerrors.Errorf("challenges count %d must be positive", sp.ChallengesCount)
	}

	var (
		g   drgraph.Graph
		err error
	)
	if sp.Drg.ExpansionDegree == 0 {
		g, err = drgraph.New[H](sp.Drg.Nodes, sp.Drg.Degree, 0, sp.Drg.Seed)
	} else {
		g, err = zigzag.NewZigZag[H](sp.Drg.Nodes, sp.Drg.Degree, sp.Drg.ExpansionDegree, sp.Drg.Seed)
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to create graph: %w", err)
	}
	if sp.ParentCacheSize >= 0 {
		if g, err = drgraph.NewParentCache(g, sp.ParentCacheSize); err != nil {
			return nil, err
		}
	}

	return &PublicParams[H]{
		Graph:           g,
		Private:         sp.Private,
		ChallengesCount: sp.ChallengesCount,
		Workers:         sp.Workers,
	}, nil
}

// PathLength is the inclusion path length of trees over the graph.
func (pp *PublicParams[H]) PathLength() int {
	return drgraph.MerkleTreeDepth(pp.Graph, merkle.BinaryArity)
}

func (pp *PublicParams[H]) porParams() por.PublicParams {
	return por.PublicParams{Leaves: pp.Graph.Size(), Private: pp.Private}
}

// Tau holds the commitments a replication produces.
type Tau struct {
	CommR fr32.Domain `cbor:"comm_r"`
	CommD fr32.Domain `cbor:"comm_d"`
}

// PublicInputs of a proof. Tau is set iff the scheme is public.
type PublicInputs struct {
	ReplicaID  *fr32.Domain
	Challenges []uint64
	Tau        *Tau
}

// PrivateInputs are the trees a prover opens challenges in.
type PrivateInputs[H hasher.Hasher] struct {
	TreeD *merkle.Tree[H]
	TreeR *merkle.Tree[H]
}

// ParentProof opens one parent of a challenged node in the replica.
type ParentProof struct {
	Node  uint64        `cbor:"node"`
	Proof por.DataProof `cbor:"proof"`
}

// Proof is the vanilla proof: every challenged replica node, its parents and
// the matching data node, each with its inclusion path.
type Proof struct {
	ReplicaNodes   []por.DataProof `cbor:"replica_nodes"`
	ReplicaParents [][]ParentProof `cbor:"replica_parents"`
	Nodes          []por.DataProof `cbor:"nodes"`
	ReplicaRoot    fr32.Domain     `cbor:"replica_root"`
	DataRoot       fr32.Domain     `cbor:"data_root"`
}

// ComponentPrivateInputs carry the commitments a private circuit binds
// instead of taking them as public inputs.
type ComponentPrivateInputs struct {
	CommD *gadgets.Root
	CommR *gadgets.Root
}
