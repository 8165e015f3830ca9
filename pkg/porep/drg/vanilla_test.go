package drg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/go-storage-proofs/pkg/drgraph"
	"github.com/filecoin-project/go-storage-proofs/pkg/fr32"
	"github.com/filecoin-project/go-storage-proofs/pkg/hasher"
	"github.com/filecoin-project/go-storage-proofs/pkg/porep"
	"github.com/filecoin-project/go-storage-proofs/pkg/testhelpers"
	tf "github.com/filecoin-project/go-storage-proofs/pkg/testhelpers/testflags"
	"github.com/filecoin-project/go-storage-proofs/pkg/zigzag"
)

type fixture[H hasher.Hasher] struct {
	pp        *PublicParams[H]
	replicaID fr32.Domain
	data      []byte
	replica   []byte
	tau       *Tau
	aux       *ProverAux[H]
}

func newFixture[H hasher.Hasher](t *testing.T, sp SetupParams) *fixture[H] {
	pp, err := Setup[H](sp)
	require.NoError(t, err)

	rng := testhelpers.NewRand()
	f := &fixture[H]{
		pp:        pp,
		replicaID: testhelpers.RandomDomain(t, rng),
		data:      testhelpers.RandomData(t, int(sp.Drg.Nodes)),
	}
	f.tau, f.aux, f.replica, err = Replicate(context.Background(), pp, f.replicaID, f.data)
	require.NoError(t, err)
	return f
}

func (f *fixture[H]) publicInputs(challenges ...uint64) PublicInputs {
	pub := PublicInputs{ReplicaID: &f.replicaID, Challenges: challenges}
	if !f.pp.Private {
		pub.Tau = f.tau
	}
	return pub
}

func setupParams(nodes uint64, degree, expansion uint32, challenges int, private bool) SetupParams {
	return SetupParams{
		Drg: DrgParams{
			Nodes:           nodes,
			Degree:          degree,
			ExpansionDegree: expansion,
			Seed:            testhelpers.CountingSeed(),
		},
		Private:         private,
		ChallengesCount: challenges,
	}
}

func TestSetup(t *testing.T) {
	tf.UnitTest(t)

	sp := setupParams(16, 4, 0, 2, false)
	sp.ParentCacheSize = -1
	pp, err := Setup[hasher.Sha256](sp)
	require.NoError(t, err)
	assert.IsType(t, &drgraph.BucketGraph[hasher.Sha256]{}, pp.Graph)
	assert.Equal(t, 4, pp.PathLength())

	pp, err = Setup[hasher.Sha256](setupParams(16, 4, 6, 2, false))
	require.NoError(t, err)
	require.IsType(t, &drgraph.ParentCache{}, pp.Graph)
	assert.IsType(t, &zigzag.ZigZagGraph[hasher.Sha256]{}, pp.Graph.(*drgraph.ParentCache).Graph)
	assert.Equal(t, uint32(10), pp.Graph.Degree())

	// Replication resolves every parent set once, leaving them cached.
	f := newFixture[hasher.Sha256](t, setupParams(16, 4, 0, 2, false))
	assert.Equal(t, 16, f.pp.Graph.(*drgraph.ParentCache).Len())

	_, err = Setup[hasher.Sha256](setupParams(8, 8, 0, 2, false))
	assert.True(t, xerrors.Is(err, drgraph.ErrDegreeTooLarge))

	_, err = Setup[hasher.Sha256](setupParams(8, 4, 0, 0, false))
	assert.Error(t, err)
}

func testReplicateExtract[H hasher.Hasher](t *testing.T, expansion uint32) {
	f := newFixture[H](t, setupParams(32, 5, expansion, 4, false))

	assert.NotEqual(t, f.data, f.replica)
	assert.Equal(t, f.aux.TreeD.Root(), f.tau.CommD)
	assert.Equal(t, f.aux.TreeR.Root(), f.tau.CommR)

	extracted, err := Extract(f.pp, f.replicaID, f.replica)
	require.NoError(t, err)
	assert.Equal(t, f.data, extracted)

	node, err := ExtractNode(f.pp, f.replicaID, f.replica, 17)
	require.NoError(t, err)
	assert.Equal(t, f.data[17*32:18*32], node[:])

	other := fr32.FromUint64(99)
	_, _, replica2, err := Replicate(context.Background(), f.pp, other, f.data)
	require.NoError(t, err)
	assert.NotEqual(t, f.replica, replica2, "replicas must depend on the replica id")
}

func TestReplicateExtractSha256(t *testing.T) {
	tf.UnitTest(t)
	testReplicateExtract[hasher.Sha256](t, 0)
}

func TestReplicateExtractPoseidonZigZag(t *testing.T) {
	tf.UnitTest(t)
	testReplicateExtract[hasher.Poseidon](t, 8)
}

func TestReplicateRejectsBadData(t *testing.T) {
	tf.UnitTest(t)

	pp, err := Setup[hasher.Blake2s](setupParams(8, 4, 0, 2, false))
	require.NoError(t, err)

	_, _, _, err = Replicate(context.Background(), pp, fr32.FromUint64(1), make([]byte, 7*32))
	assert.Error(t, err)

	bad := make([]byte, 8*32)
	bad[31] = 0xff
	_, _, _, err = Replicate(context.Background(), pp, fr32.FromUint64(1), bad)
	assert.True(t, xerrors.Is(err, fr32.ErrNotCanonical))

	_, err = Extract(pp, fr32.FromUint64(1), make([]byte, 3))
	assert.Error(t, err)
}

func testProveVerify[H hasher.Hasher](t *testing.T, private bool, expansion uint32) {
	f := newFixture[H](t, setupParams(16, 4, expansion, 3, private))
	pub := f.publicInputs(1, 9, 15)

	proof, err := Prove(f.pp, pub, f.aux.PrivateInputs())
	require.NoError(t, err)
	require.Len(t, proof.Nodes, 3)
	for i := range proof.ReplicaParents {
		assert.Len(t, proof.ReplicaParents[i], int(f.pp.Graph.Degree()))
	}

	ok, err := Verify(f.pp, pub, proof)
	require.NoError(t, err)
	assert.True(t, ok)

	raw, err := proof.Bytes()
	require.NoError(t, err)
	decoded, err := DecodeProof(raw)
	require.NoError(t, err)
	ok, err = Verify(f.pp, pub, decoded)
	require.NoError(t, err)
	assert.True(t, ok)

	// tampered data node
	decoded.Nodes[1].Data = fr32.FromUint64(3)
	ok, err = Verify(f.pp, pub, decoded)
	require.NoError(t, err)
	assert.False(t, ok)

	// a different replica id changes every key
	otherID := fr32.FromUint64(5)
	otherPub := pub
	otherPub.ReplicaID = &otherID
	ok, err = Verify(f.pp, otherPub, proof)
	require.NoError(t, err)
	assert.False(t, ok)

	// proof for other challenges
	swapped := pub
	swapped.Challenges = []uint64{9, 1, 15}
	ok, err = Verify(f.pp, swapped, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProveVerifyPublic(t *testing.T) {
	tf.UnitTest(t)
	testProveVerify[hasher.Sha256](t, false, 0)
	testProveVerify[hasher.Poseidon](t, false, 6)
}

func TestProveVerifyPrivate(t *testing.T) {
	tf.UnitTest(t)
	testProveVerify[hasher.Blake2s](t, true, 0)
}

func TestVerifyRejectsMalformedInputs(t *testing.T) {
	tf.UnitTest(t)

	f := newFixture[hasher.Sha256](t, setupParams(8, 4, 0, 2, false))
	pub := f.publicInputs(1, 3)
	proof, err := Prove(f.pp, pub, f.aux.PrivateInputs())
	require.NoError(t, err)

	noID := pub
	noID.ReplicaID = nil
	_, err = Verify(f.pp, noID, proof)
	assert.True(t, xerrors.Is(err, porep.ErrMissingReplicaID))

	noTau := pub
	noTau.Tau = nil
	_, err = Verify(f.pp, noTau, proof)
	assert.True(t, xerrors.Is(err, porep.ErrInconsistentPrivacy))

	short := *proof
	short.ReplicaNodes = short.ReplicaNodes[:1]
	_, err = Verify(f.pp, pub, &short)
	assert.True(t, xerrors.Is(err, porep.ErrCountMismatch))

	_, err = Prove(f.pp, f.publicInputs(1, 2, 3), f.aux.PrivateInputs())
	assert.True(t, xerrors.Is(err, porep.ErrTooManyChallenges))

	_, err = Prove(f.pp, f.publicInputs(8), f.aux.PrivateInputs())
	assert.Error(t, err)

	wrongTau := pub
	wrongTau.Tau = &Tau{CommR: f.tau.CommD, CommD: f.tau.CommR}
	ok, err := Verify(f.pp, wrongTau, proof)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRejectsValuesOutsideField(t *testing.T) {
	tf.UnitTest(t)

	f := newFixture[hasher.Poseidon](t, setupParams(8, 4, 0, 2, false))
	pub := f.publicInputs(1, 3)
	proof, err := Prove(f.pp, pub, f.aux.PrivateInputs())
	require.NoError(t, err)

	raw, err := proof.Bytes()
	require.NoError(t, err)

	var outside fr32.Domain
	for i := range outside {
		outside[i] = 0xff
	}
	mutations := map[string]func(*Proof){
		"replica sibling": func(p *Proof) { p.ReplicaNodes[0].Proof.Path[0].Hashes[0] = outside },
		"parent sibling":  func(p *Proof) { p.ReplicaParents[1][0].Proof.Proof.Path[2].Hashes[0] = outside },
		"data sibling":    func(p *Proof) { p.Nodes[1].Proof.Path[1].Hashes[0] = outside },
	}
	for name, mutate := range mutations {
		decoded, err := DecodeProof(raw)
		require.NoError(t, err)
		mutate(decoded)

		assert.NotPanics(t, func() {
			ok, err := Verify(f.pp, pub, decoded)
			assert.NoError(t, err, name)
			assert.False(t, ok, name)
		}, name)
	}
}

func TestEncodingParents(t *testing.T) {
	tf.UnitTest(t)

	assert.Equal(t, []uint64{0, 2}, EncodingParents(3, []uint64{0, 2, 3, 5}))
	assert.Empty(t, EncodingParents(0, []uint64{0, 0, 1}))
}
