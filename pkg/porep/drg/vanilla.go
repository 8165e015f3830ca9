package drg

import (
	"context"

	"github.com/docker/go-units"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/encoding"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/metrics"
	"github.com/filecoin-project/go-storage-proofs/pkg/por"
	"github.com/filecoin-project/go-storage-proofs/pkg/porep"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/parallel"
)

var (
	replicateTimer  = metrics.NewTimerMs("porep/drg/replicate_ms", "Duration of replicating a sector")
	parentsResolved = metrics.NewInt64Counter("porep/drg/parents_resolved", "Number of parent sets generated while encoding")
)

// Kdf derives the encoding key of a node from the replica id and the
// replica values of its encoding parents.
func Kdf[H hasher.Hasher](replicaID fr32.Domain, parents []fr32.Domain) fr32.Domain {
	buf := make([]byte, 0, (len(parents)+1)*fr32.NodeSize)
	buf = append(buf, replicaID[:]...)
	for _, p := range parents {
		buf = append(buf, p[:]...)
	}
	var h H
	return h.Digest(buf)
}

// EncodingParents filters the parents a node's key depends on: the ones
// encoded before it.
func EncodingParents(node uint64, parents []uint64) []uint64 {
	out := make([]uint64, 0, len(parents))
	for _, p := range parents {
		if p < node {
			out = append(out, p)
		}
	}
	return out
}

// ProverAux holds the trees built during replication.
type ProverAux[H hasher.Hasher] struct {
	TreeD *merkle.Tree[H]
	TreeR *merkle.Tree[H]
}

// PrivateInputs returns the inputs needed to prove against this replica.
func (aux *ProverAux[H]) PrivateInputs() PrivateInputs[H] {
	return PrivateInputs[H]{TreeD: aux.TreeD, TreeR: aux.TreeR}
}

// Replicate encodes data for replicaID. Nodes are encoded in order, each
// one as data + Kdf(replicaID, replica values of its encoding parents), so
// the replica cannot be produced faster than one node after another.
func Replicate[H hasher.Hasher](ctx context.Context, pp *PublicParams[H], replicaID fr32.Domain, data []byte) (*Tau, *ProverAux[H], []byte, error) {
	var h H
	ctx = metrics.WithHasher(ctx, h.Name())

	sw := replicateTimer.Start(ctx)
	defer sw.Stop(ctx)

	n := pp.Graph.Size()
	if uint64(len(data)) != n*fr32.NodeSize {
		return nil, nil, nil, xerrors.Errorf("data is %s, graph of %d nodes needs %s",
			units.BytesSize(float64(len(data))), n, units.BytesSize(float64(n*fr32.NodeSize)))
	}

	treeD, err := merkle.FromData[H](data)
	if err != nil {
		return nil, nil, nil, xerrors.Errorf("failed to build data tree: %w", err)
	}

	replica := make([]fr32.Domain, n)
	for i := uint64(0); i < n; i++ {
		parents, err := pp.Graph.Parents(i)
		if err != nil {
			return nil, nil, nil, xerrors.Errorf("failed to get parents of node %d: %w", i, err)
		}
		values := make([]fr32.Domain, 0, len(parents))
		for _, p := range EncodingParents(i, parents) {
			values = append(values, replica[p])
		}

		d, err := fr32.FromBytes(data[i*fr32.NodeSize : (i+1)*fr32.NodeSize])
		if err != nil {
			return nil, nil, nil, xerrors.Errorf("node %d: %w", i, err)
		}
		replica[i] = d.Add(Kdf[H](replicaID, values))
	}
	parentsResolved.Inc(ctx, int64(n))

	treeR, err := merkle.Build[H](replica)
	if err != nil {
		return nil, nil, nil, xerrors.Errorf("failed to build replica tree: %w", err)
	}

	out := make([]byte, 0, len(data))
	for _, r := range replica {
		out = append(out, r[:]...)
	}

	log.Debugw("replicated", "nodes", n, "size", units.BytesSize(float64(len(data))), "commR", treeR.Root())
	return &Tau{CommR: treeR.Root(), CommD: treeD.Root()}, &ProverAux[H]{TreeD: treeD, TreeR: treeR}, out, nil
}

// ExtractNode decodes a single node of replica.
func ExtractNode[H hasher.Hasher](pp *PublicParams[H], replicaID fr32.Domain, replica []byte, node uint64) (fr32.Domain, error) {
	parents, err := pp.Graph.Parents(node)
	if err != nil {
		return fr32.Domain{}, xerrors.Errorf("failed to get parents of node %d: %w", node, err)
	}
	enc := EncodingParents(node, parents)
	values := make([]fr32.Domain, 0, len(enc))
	for _, p := range enc {
		v, err := nodeAt(replica, p)
		if err != nil {
			return fr32.Domain{}, err
		}
		values = append(values, v)
	}
	r, err := nodeAt(replica, node)
	if err != nil {
		return fr32.Domain{}, err
	}
	return r.Sub(Kdf[H](replicaID, values)), nil
}

// Extract decodes the whole replica. Unlike encoding, decoding a node only
// reads the replica, so nodes are decoded in parallel.
func Extract[H hasher.Hasher](pp *PublicParams[H], replicaID fr32.Domain, replica []byte) ([]byte, error) {
	n := pp.Graph.Size()
	if uint64(len(replica)) != n*fr32.NodeSize {
		return nil, xerrors.Errorf("replica length %d does not match %d nodes", len(replica), n)
	}
	nodes, err := parallel.Map(int(n), pp.Workers, func(i int) (fr32.Domain, error) {
		return ExtractNode(pp, replicaID, replica, uint64(i))
	})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(replica))
	for _, d := range nodes {
		out = append(out, d[:]...)
	}
	return out, nil
}

func nodeAt(replica []byte, node uint64) (fr32.Domain, error) {
	raw, err := fr32.DataAtNode(replica, node)
	if err != nil {
		return fr32.Domain{}, xerrors.Errorf("failed to read node %d: %w", node, err)
	}
	return fr32.FromBytes(raw)
}

// Prove opens every challenged node, its parents and its data node.
func Prove[H hasher.Hasher](pp *PublicParams[H], pub PublicInputs, priv PrivateInputs[H]) (*Proof, error) {
	if len(pub.Challenges) > pp.ChallengesCount {
		return nil, xerrors.Errorf("%d challenges, at most %d: %w", len(pub.Challenges), pp.ChallengesCount, porep.ErrTooManyChallenges)
	}

	proof := &Proof{
		ReplicaNodes:   make([]por.DataProof, len(pub.Challenges)),
		ReplicaParents: make([][]ParentProof, len(pub.Challenges)),
		Nodes:          make([]por.DataProof, len(pub.Challenges)),
		ReplicaRoot:    priv.TreeR.Root(),
		DataRoot:       priv.TreeD.Root(),
	}
	for i, c := range pub.Challenges {
		if c >= pp.Graph.Size() {
			return nil, xerrors.Errorf("challenge %d out of range for %d nodes", c, pp.Graph.Size())
		}

		rp, err := por.Prove(priv.TreeR, c)
		if err != nil {
			return nil, err
		}
		proof.ReplicaNodes[i] = *rp

		parents, err := pp.Graph.Parents(c)
		if err != nil {
			return nil, xerrors.Errorf("failed to get parents of challenge %d: %w", c, err)
		}
		proof.ReplicaParents[i] = make([]ParentProof, len(parents))
		for j, p := range parents {
			parentProof, err := por.Prove(priv.TreeR, p)
			if err != nil {
				return nil, err
			}
			proof.ReplicaParents[i][j] = ParentProof{Node: p, Proof: *parentProof}
		}

		dp, err := por.Prove(priv.TreeD, c)
		if err != nil {
			return nil, err
		}
		proof.Nodes[i] = *dp
	}
	return proof, nil
}

// Verify checks a vanilla proof. Malformed inputs are errors; proofs that
// are well formed but wrong verify as false.
func Verify[H hasher.Hasher](pp *PublicParams[H], pub PublicInputs, proof *Proof) (bool, error) {
	if pub.ReplicaID == nil {
		return false, porep.ErrMissingReplicaID
	}
	if (pub.Tau == nil) != pp.Private {
		return false, porep.ErrInconsistentPrivacy
	}
	if err := checkCounts(pp, len(pub.Challenges), proof); err != nil {
		return false, err
	}
	if pub.Tau != nil && (pub.Tau.CommR != proof.ReplicaRoot || pub.Tau.CommD != proof.DataRoot) {
		log.Warnw("proof roots do not match commitments", "commR", pub.Tau.CommR, "replicaRoot", proof.ReplicaRoot)
		return false, nil
	}

	pathLen := pp.PathLength()
	for i, c := range pub.Challenges {
		if err := por.Verify[H](&proof.ReplicaNodes[i], proof.ReplicaRoot, c, pathLen); err != nil {
			log.Warnw("invalid replica node proof", "challenge", c, "err", err)
			return false, nil
		}
		if err := por.Verify[H](&proof.Nodes[i], proof.DataRoot, c, pathLen); err != nil {
			log.Warnw("invalid data node proof", "challenge", c, "err", err)
			return false, nil
		}

		parents, err := pp.Graph.Parents(c)
		if err != nil {
			return false, xerrors.Errorf("failed to get parents of challenge %d: %w", c, err)
		}
		if len(proof.ReplicaParents[i]) != len(parents) {
			return false, xerrors.Errorf("challenge %d has %d parent proofs, degree is %d: %w",
				c, len(proof.ReplicaParents[i]), len(parents), porep.ErrCountMismatch)
		}

		values := make([]fr32.Domain, 0, len(parents))
		for j, p := range parents {
			pr := proof.ReplicaParents[i][j]
			if pr.Node != p {
				log.Warnw("parent mismatch", "challenge", c, "expected", p, "actual", pr.Node)
				return false, nil
			}
			if err := por.Verify[H](&pr.Proof, proof.ReplicaRoot, p, pathLen); err != nil {
				log.Warnw("invalid parent proof", "challenge", c, "parent", p, "err", err)
				return false, nil
			}
			if p < c {
				values = append(values, pr.Proof.Data)
			}
		}

		key := Kdf[H](*pub.ReplicaID, values)
		if proof.ReplicaNodes[i].Data.Sub(key) != proof.Nodes[i].Data {
			log.Warnw("replica node does not decode to data node", "challenge", c)
			return false, nil
		}
	}
	return true, nil
}

func checkCounts[H hasher.Hasher](pp *PublicParams[H], challenges int, proof *Proof) error {
	l := len(proof.Nodes)
	if l > pp.ChallengesCount {
		return xerrors.Errorf("%d nodes, at most %d: %w", l, pp.ChallengesCount, porep.ErrTooManyChallenges)
	}
	if len(proof.ReplicaParents) != l {
		return xerrors.Errorf("%d replica parent sets for %d nodes: %w", len(proof.ReplicaParents), l, porep.ErrCountMismatch)
	}
	if len(proof.ReplicaNodes) != l {
		return xerrors.Errorf("%d replica nodes for %d nodes: %w", len(proof.ReplicaNodes), l, porep.ErrCountMismatch)
	}
	if challenges >= 0 && challenges != l {
		return xerrors.Errorf("%d challenges for %d nodes: %w", challenges, l, porep.ErrCountMismatch)
	}
	return nil
}

// Bytes returns the CBOR encoding of the proof.
func (p *Proof) Bytes() ([]byte, error) {
	return encoding.Encode(p)
}

// DecodeProof decodes a proof produced by Proof.Bytes.
func DecodeProof(raw []byte) (*Proof, error) {
	var p Proof
	if err := encoding.Decode(raw, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
