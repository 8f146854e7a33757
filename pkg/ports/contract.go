package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/bitrig/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSceneGraphContract runs a suite of tests to verify that a SceneGraph implementation
// adheres to the defined interface contract. newScene must return an empty scene.
func RunSceneGraphContract(t *testing.T, newScene func() SceneGraph) {
	t.Run("Hierarchy Order", func(t *testing.T) {
		s := newScene()
		root, err := s.Create(domain.KindTransform, "root", domain.NoBit)
		require.NoError(t, err)
		a, _ := s.Create(domain.KindTransform, "a", root)
		b, _ := s.Create(domain.KindTransform, "b", root)
		a1, _ := s.Create(domain.KindTransform, "a1", a)

		children, err := s.Children(root)
		require.NoError(t, err)
		assert.Equal(t, []domain.BitID{a, b}, children)

		desc, err := s.Descendants(root)
		require.NoError(t, err)
		assert.Equal(t, []domain.BitID{a, a1, b}, desc, "descendants are preorder")

		anc, err := s.Ancestors(a1)
		require.NoError(t, err)
		assert.Equal(t, []domain.BitID{a, root}, anc, "ancestors are nearest first")

		anc, err = s.Ancestors(root)
		require.NoError(t, err)
		assert.Empty(t, anc)

		path, err := s.Path(a1)
		require.NoError(t, err)
		assert.Equal(t, "|root|a|a1", path)
	})

	t.Run("Unknown Bit", func(t *testing.T) {
		s := newScene()
		_, err := s.Children("missing")
		assert.ErrorIs(t, err, domain.ErrBitNotFound)
		_, err = s.Ancestors("missing")
		assert.ErrorIs(t, err, domain.ErrBitNotFound)
	})

	t.Run("Attributes", func(t *testing.T) {
		s := newScene()
		n, _ := s.Create(domain.KindTransform, "n", domain.NoBit)

		_, err := s.GetAttr(n, "weight")
		assert.ErrorIs(t, err, domain.ErrAttrNotFound)
		assert.ErrorIs(t, s.SetAttr(n, "weight", 1.0), domain.ErrAttrNotFound)

		require.NoError(t, s.AddAttr(n, "weight", 0.5))
		require.NoError(t, s.AddAttr(n, "weight", 9.0), "re-adding is a no-op")
		v, err := s.GetAttr(n, "weight")
		require.NoError(t, err)
		assert.Equal(t, 0.5, v)

		require.NoError(t, s.SetAttr(n, "weight", 2.0))
		v, _ = s.GetAttr(n, "weight")
		assert.Equal(t, 2.0, v)
	})

	t.Run("Connections", func(t *testing.T) {
		s := newScene()
		a, _ := s.Create(domain.KindTransform, "a", domain.NoBit)
		n1, _ := s.Create(domain.KindNetwork, "n1", domain.NoBit)
		n2, _ := s.Create(domain.KindNetwork, "n2", domain.NoBit)

		dst := domain.PlugOf(a, "links")
		require.NoError(t, s.Connect(domain.PlugOf(n2, domain.AttrMessage), dst))
		require.NoError(t, s.Connect(domain.PlugOf(n1, domain.AttrMessage), dst))

		ok, err := s.IsConnected(domain.PlugOf(n1, domain.AttrMessage), dst)
		require.NoError(t, err)
		assert.True(t, ok)

		srcs, err := s.Sources(dst)
		require.NoError(t, err)
		assert.Equal(t, []domain.Plug{
			domain.PlugOf(n2, domain.AttrMessage),
			domain.PlugOf(n1, domain.AttrMessage),
		}, srcs, "sources keep creation order")

		require.NoError(t, s.Disconnect(domain.PlugOf(n2, domain.AttrMessage), dst))
		srcs, _ = s.Sources(dst)
		assert.Len(t, srcs, 1)

		require.NoError(t, s.Delete(n1))
		srcs, _ = s.Sources(dst)
		assert.Empty(t, srcs, "deleting a node drops its edges")

		roots, _ := s.Roots()
		assert.Equal(t, []domain.BitID{a}, roots, "network nodes stay outside the hierarchy")
	})

	t.Run("Reparent And Search", func(t *testing.T) {
		s := newScene()
		root, _ := s.Create(domain.KindGroup, "grp", domain.NoBit)
		j, _ := s.Create(domain.KindJoint, "hip", domain.NoBit)
		k, _ := s.Create(domain.KindJoint, "knee", j)

		require.NoError(t, s.Reparent(j, root))
		p, _ := s.Parent(j)
		assert.Equal(t, root, p)

		found, ok, err := s.FindDescendantByName(root, "knee")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, k, found)

		_, ok, _ = s.FindDescendantByName(j, "grp")
		assert.False(t, ok)

		assert.ErrorIs(t, s.Reparent(root, k), domain.ErrCycle)

		byName, ok := s.Exists("knee")
		assert.True(t, ok)
		assert.Equal(t, k, byName)

		require.NoError(t, s.Delete(j))
		_, ok = s.Exists("knee")
		assert.False(t, ok, "delete removes the subtree")
	})

	t.Run("Match Transform", func(t *testing.T) {
		s := newScene()
		src, _ := s.Create(domain.KindTransform, "src", domain.NoBit)
		dst, _ := s.Create(domain.KindGroup, "dst", domain.NoBit)
		require.NoError(t, s.SetAttr(src, domain.AttrTranslate, domain.Vec3{1, 2, 3}))

		require.NoError(t, s.MatchTransform(dst, src))
		v, err := s.GetAttr(dst, domain.AttrTranslate)
		require.NoError(t, err)
		assert.Equal(t, domain.Vec3{1, 2, 3}, v)
	})
}

// RunSceneStoreContract runs a suite of tests to verify that a SceneStore implementation
// adheres to the defined interface contract.
func RunSceneStoreContract(t *testing.T, store SceneStore) {
	ctx := context.Background()
	name := "contract-scene-" + time.Now().Format("20060102150405")

	doc := &domain.SceneDocument{
		Name: name,
		Nodes: []domain.NodeRecord{
			{ID: "n1", Name: "root", Kind: domain.KindTransform, Attrs: map[string]any{"label": "hero"}},
			{ID: "n2", Name: "spine", Kind: domain.KindTransform, Parent: "n1"},
			{ID: "n3", Name: "meta", Kind: domain.KindNetwork},
		},
		Edges: []domain.EdgeRecord{
			{Src: domain.PlugOf("n1", domain.AttrMessage), Dst: domain.PlugOf("n3", domain.AttrOwner)},
		},
	}

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, name, doc), "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, name, loaded.Name)
		require.Len(t, loaded.Nodes, 3)
		assert.Equal(t, domain.BitID("n1"), loaded.Nodes[1].Parent)
		assert.Equal(t, "hero", loaded.Nodes[0].Attrs["label"])
		require.Len(t, loaded.Edges, 1)
		assert.Equal(t, domain.PlugOf("n3", domain.AttrOwner), loaded.Edges[0].Dst)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrSceneNotFound)
	})

	t.Run("List", func(t *testing.T) {
		other := name + "-2"
		require.NoError(t, store.Save(ctx, other, &domain.SceneDocument{Name: other}))
		defer func() { _ = store.Delete(ctx, other) }()

		names, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, names, name)
		assert.Contains(t, names, other)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, name), "Delete should not return error")
		_, err := store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrSceneNotFound, "Load after Delete should return ErrSceneNotFound")
	})
}
