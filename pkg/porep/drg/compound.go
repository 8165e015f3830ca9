package drg

import (
	"context"
	"fmt"

	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/constants"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/gadgets"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/merkle"
	"github.com/filecoin-project/go-storage-proofs/pkg/metrics"
	"github.com/filecoin-project/go-storage-proofs/pkg/por"
	"github.com/filecoin-project/go-storage-proofs/pkg/porep"
	"github.com/filecoin-project/go-storage-proofs/pkg/util/parallel"
)

var (
	publicInputsEmitted = metrics.NewInt64Counter("porep/drg/public_inputs", "Number of public inputs generated")
	circuitsAssembled   = metrics.NewInt64Counter("porep/drg/circuits", "Number of circuits assembled")
)

// CacheIdentifier names the parameter set circuits built for pp belong to.
func CacheIdentifier[H hasher.Hasher](pp *PublicParams[H]) string {
	var h H
	return fmt.Sprintf("drg-proof-of-replication-%s-nodes=%d-degree=%d-challenges=%d-private=%t-%s",
		h.Name(), pp.Graph.Size(), pp.Graph.Degree(), pp.ChallengesCount, pp.Private, constants.ParamsVersion)
}

// NumPublicInputs is the length of the vector GeneratePublicInputs returns
// for the given number of challenges.
func NumPublicInputs[H hasher.Hasher](pp *PublicParams[H], challenges int) int {
	perNode := por.BlockSize(pp.Private)
	return 1 + challenges*(int(pp.Graph.Degree())+2)*perNode
}

// GeneratePublicInputs lays out the public inputs of a proof in the order the
// circuit allocates them: the replica id, then for every challenge, in order,
// one PoR block for the challenged node and each of its parents against the
// replica commitment, followed by one PoR block for the challenged node
// against the data commitment.
func GeneratePublicInputs[H hasher.Hasher](ctx context.Context, pub PublicInputs, pp *PublicParams[H]) ([]fr32.Domain, error) {
	var h H
	ctx = metrics.WithHasher(ctx, h.Name())

	if pub.ReplicaID == nil {
		return nil, porep.ErrMissingReplicaID
	}
	if (pub.Tau == nil) != pp.Private {
		return nil, xerrors.Errorf("public input parameter tau must be set iff not private: %w", porep.ErrInconsistentPrivacy)
	}

	var commR, commD *fr32.Domain
	if pub.Tau != nil {
		commR, commD = &pub.Tau.CommR, &pub.Tau.CommD
	}
	porParams := pp.porParams()

	blocks, err := parallel.Concat(len(pub.Challenges), pp.Workers, func(i int) ([]fr32.Domain, error) {
		challenge := pub.Challenges[i]
		parents, err := pp.Graph.Parents(challenge)
		if err != nil {
			return nil, xerrors.Errorf("failed to get parents of challenge %d: %w", challenge, err)
		}

		nodes := append([]uint64{challenge}, parents...)
		out := make([]fr32.Domain, 0, (len(nodes)+1)*por.BlockSize(pp.Private))
		for _, node := range nodes {
			in, err := por.GeneratePublicInputs(por.PublicInputs{Commitment: commR, Challenge: node}, porParams)
			if err != nil {
				return nil, xerrors.Errorf("replica inputs of node %d: %w", node, err)
			}
			out = append(out, in...)
		}
		in, err := por.GeneratePublicInputs(por.PublicInputs{Commitment: commD, Challenge: challenge}, porParams)
		if err != nil {
			return nil, xerrors.Errorf("data inputs of node %d: %w", challenge, err)
		}
		return append(out, in...), nil
	})
	if err != nil {
		return nil, err
	}

	inputs := make([]fr32.Domain, 0, 1+len(blocks))
	inputs = append(inputs, *pub.ReplicaID)
	inputs = append(inputs, blocks...)

	publicInputsEmitted.Inc(ctx, int64(len(inputs)))
	return inputs, nil
}

// Circuit is the witness of a DRG replication proof. Absent values are nil.
type Circuit[H hasher.Hasher] struct {
	ReplicaNodes      []*fr32.Domain
	ReplicaNodesPaths []gadgets.AuthPath
	ReplicaRoot       gadgets.Root

	ReplicaParents      [][]*fr32.Domain
	ReplicaParentsPaths [][]gadgets.AuthPath

	DataNodes      []*fr32.Domain
	DataNodesPaths []gadgets.AuthPath
	DataRoot       gadgets.Root

	ReplicaID *fr32.Domain
	Private   bool
}

// NewCircuit builds the circuit witnessing proof.
func NewCircuit[H hasher.Hasher](ctx context.Context, pub PublicInputs, cpi ComponentPrivateInputs, proof *Proof, pp *PublicParams[H]) (*Circuit[H], error) {
	var h H
	ctx = metrics.WithHasher(ctx, h.Name())

	if err := checkCounts(pp, -1, proof); err != nil {
		return nil, err
	}
	if err := checkShape(pp, proof); err != nil {
		return nil, err
	}

	var dataRoot, replicaRoot gadgets.Root
	if pp.Private {
		if cpi.CommD == nil || cpi.CommR == nil {
			return nil, xerrors.Errorf("is_private: %w", porep.ErrMissingPrivateInputs)
		}
		dataRoot, replicaRoot = *cpi.CommD, *cpi.CommR
	} else {
		dr, rr := proof.DataRoot, proof.ReplicaRoot
		dataRoot, replicaRoot = gadgets.RootVal(&dr), gadgets.RootVal(&rr)
	}

	l := len(proof.Nodes)
	c := &Circuit[H]{
		ReplicaNodes:        make([]*fr32.Domain, l),
		ReplicaNodesPaths:   make([]gadgets.AuthPath, l),
		ReplicaRoot:         replicaRoot,
		ReplicaParents:      make([][]*fr32.Domain, l),
		ReplicaParentsPaths: make([][]gadgets.AuthPath, l),
		DataNodes:           make([]*fr32.Domain, l),
		DataNodesPaths:      make([]gadgets.AuthPath, l),
		DataRoot:            dataRoot,
		ReplicaID:           pub.ReplicaID,
		Private:             pp.Private,
	}
	for i := 0; i < l; i++ {
		c.ReplicaNodes[i] = value(proof.ReplicaNodes[i].Data)
		c.ReplicaNodesPaths[i] = gadgets.AuthPathFromProof(&proof.ReplicaNodes[i].Proof)

		parents := proof.ReplicaParents[i]
		c.ReplicaParents[i] = make([]*fr32.Domain, len(parents))
		c.ReplicaParentsPaths[i] = make([]gadgets.AuthPath, len(parents))
		for j := range parents {
			c.ReplicaParents[i][j] = value(parents[j].Proof.Data)
			c.ReplicaParentsPaths[i][j] = gadgets.AuthPathFromProof(&parents[j].Proof.Proof)
		}

		c.DataNodes[i] = value(proof.Nodes[i].Data)
		c.DataNodesPaths[i] = gadgets.AuthPathFromProof(&proof.Nodes[i].Proof)
	}

	if (pub.Tau == nil) != pp.Private {
		return nil, xerrors.Errorf("circuit tau must be set iff not private: %w", porep.ErrInconsistentPrivacy)
	}

	circuitsAssembled.Inc(ctx, 1)
	return c, nil
}

// checkShape rejects proofs a circuit cannot be built from with the shape of
// BlankCircuit: every challenge needs Degree parents and every path
// PathLength binary levels.
func checkShape[H hasher.Hasher](pp *PublicParams[H], proof *Proof) error {
	degree := int(pp.Graph.Degree())
	pathLen := pp.PathLength()
	for i := range proof.Nodes {
		if len(proof.ReplicaParents[i]) != degree {
			return xerrors.Errorf("challenge %d has %d parent proofs, degree is %d: %w",
				i, len(proof.ReplicaParents[i]), degree, porep.ErrCountMismatch)
		}
		if err := proof.ReplicaNodes[i].Proof.ValidateShape(pathLen, merkle.BinaryArity); err != nil {
			return xerrors.Errorf("replica node of challenge %d: %w", i, err)
		}
		for j := range proof.ReplicaParents[i] {
			if err := proof.ReplicaParents[i][j].Proof.Proof.ValidateShape(pathLen, merkle.BinaryArity); err != nil {
				return xerrors.Errorf("parent %d of challenge %d: %w", j, i, err)
			}
		}
		if err := proof.Nodes[i].Proof.ValidateShape(pathLen, merkle.BinaryArity); err != nil {
			return xerrors.Errorf("data node of challenge %d: %w", i, err)
		}
	}
	return nil
}

// BlankCircuit is a circuit with every value absent and the shape of any
// circuit built under pp with ChallengesCount challenges.
func BlankCircuit[H hasher.Hasher](pp *PublicParams[H]) *Circuit[H] {
	n := pp.ChallengesCount
	degree := int(pp.Graph.Degree())
	pathLen := pp.PathLength()

	c := &Circuit[H]{
		ReplicaNodes:        make([]*fr32.Domain, n),
		ReplicaNodesPaths:   make([]gadgets.AuthPath, n),
		ReplicaRoot:         gadgets.RootVal(nil),
		ReplicaParents:      make([][]*fr32.Domain, n),
		ReplicaParentsPaths: make([][]gadgets.AuthPath, n),
		DataNodes:           make([]*fr32.Domain, n),
		DataNodesPaths:      make([]gadgets.AuthPath, n),
		DataRoot:            gadgets.RootVal(nil),
		Private:             pp.Private,
	}
	for i := 0; i < n; i++ {
		c.ReplicaNodesPaths[i] = gadgets.BlankAuthPath(pathLen, merkle.BinaryArity)
		c.ReplicaParents[i] = make([]*fr32.Domain, degree)
		c.ReplicaParentsPaths[i] = make([]gadgets.AuthPath, degree)
		for j := 0; j < degree; j++ {
			c.ReplicaParentsPaths[i][j] = gadgets.BlankAuthPath(pathLen, merkle.BinaryArity)
		}
		c.DataNodesPaths[i] = gadgets.BlankAuthPath(pathLen, merkle.BinaryArity)
	}
	return c
}

// Synthesize allocates the circuit into cs. Public inputs are allocated in
// exactly the order GeneratePublicInputs lays them out.
func (c *Circuit[H]) Synthesize(cs gadgets.ConstraintSystem) error {
	replicaID, err := gadgets.AllocNum(cs, "replica_id_num", c.ReplicaID)
	if err != nil {
		return err
	}
	if _, err := replicaID.Inputize(cs, "replica_id"); err != nil {
		return err
	}

	replicaRoot, err := c.ReplicaRoot.Allocated(cs.Namespace("replica_root"))
	if err != nil {
		return err
	}
	dataRoot, err := c.DataRoot.Allocated(cs.Namespace("data_root"))
	if err != nil {
		return err
	}

	for i := range c.ReplicaNodes {
		ccs := cs.Namespace(fmt.Sprintf("challenge_%d", i))

		err := gadgets.PoR[H](ccs.Namespace("replica_inclusion"), c.ReplicaNodes[i], c.ReplicaNodesPaths[i],
			gadgets.RootVar(replicaRoot), c.Private)
		if err != nil {
			return err
		}

		for j := range c.ReplicaParents[i] {
			err := gadgets.PoR[H](ccs.Namespace(fmt.Sprintf("parents_inclusion_%d", j)), c.ReplicaParents[i][j],
				c.ReplicaParentsPaths[i][j], gadgets.RootVar(replicaRoot), c.Private)
			if err != nil {
				return err
			}
		}

		err = gadgets.PoR[H](ccs.Namespace("data_inclusion"), c.DataNodes[i], c.DataNodesPaths[i],
			gadgets.RootVar(dataRoot), c.Private)
		if err != nil {
			return err
		}

		i := i
		ccs.Enforce("encoding", func() (bool, error) {
			return c.checkEncoding(replicaID, i)
		})
	}
	return nil
}

// checkEncoding recomputes the key of challenge i from the parents encoded
// before it and checks the replica node decodes to the data node.
func (c *Circuit[H]) checkEncoding(replicaID gadgets.AllocatedNum, i int) (bool, error) {
	id, err := replicaID.Value()
	if err != nil {
		return false, err
	}
	node, err := c.ReplicaNodesPaths[i].PathIndex(merkle.BinaryArity)
	if err != nil {
		return false, err
	}
	if c.ReplicaNodes[i] == nil || c.DataNodes[i] == nil {
		return false, gadgets.ErrAssignmentMissing
	}

	values := make([]fr32.Domain, 0, len(c.ReplicaParents[i]))
	for j, v := range c.ReplicaParents[i] {
		p, err := c.ReplicaParentsPaths[i][j].PathIndex(merkle.BinaryArity)
		if err != nil {
			return false, err
		}
		if p >= node {
			continue
		}
		if v == nil {
			return false, gadgets.ErrAssignmentMissing
		}
		values = append(values, *v)
	}
	return c.ReplicaNodes[i].Sub(Kdf[H](id, values)) == *c.DataNodes[i], nil
}

// CircuitForTest proves pub against priv and returns the circuit together
// with the public inputs it must be verified against.
func CircuitForTest[H hasher.Hasher](ctx context.Context, pp *PublicParams[H], pub PublicInputs, priv PrivateInputs[H]) (*Circuit[H], []fr32.Domain, error) {
	proof, err := Prove(pp, pub, priv)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to generate vanilla proof: %w", err)
	}

	var cpi ComponentPrivateInputs
	if pp.Private {
		commD, commR := gadgets.RootVal(value(priv.TreeD.Root())), gadgets.RootVal(value(priv.TreeR.Root()))
		cpi = ComponentPrivateInputs{CommD: &commD, CommR: &commR}
	}

	c, err := NewCircuit(ctx, pub, cpi, proof, pp)
	if err != nil {
		return nil, nil, err
	}
	inputs, err := GeneratePublicInputs(ctx, pub, pp)
	if err != nil {
		return nil, nil, err
	}
	return c, inputs, nil
}

func value(d fr32.Domain) *fr32.Domain {
	return &d
}
