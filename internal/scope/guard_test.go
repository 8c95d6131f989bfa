package scope

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aidf-dev/aidf/internal/types"
)

func testScope() types.Scope {
	return types.Scope{
		Allowed:   []string{"src/**"},
		Forbidden: []string{"node_modules/**"},
		AskBefore: []string{"config/**"},
	}
}

func TestCheckFileChangeForbiddenAlwaysBlocks(t *testing.T) {
	for _, mode := range []Mode{ModeStrict, ModeAsk, ModePermissive} {
		d := CheckFileChange("node_modules/x.js", testScope(), mode)
		require.Equal(t, types.ScopeBlock, d.Kind, "mode=%s", mode)
	}
}

func TestCheckFileChangeAskBeforePermissiveAllows(t *testing.T) {
	d := CheckFileChange("config/app.yaml", testScope(), ModePermissive)
	require.Equal(t, types.ScopeAllow, d.Kind)
}

func TestCheckFileChangeAskBeforeOtherModesAsk(t *testing.T) {
	d := CheckFileChange("config/app.yaml", testScope(), ModeStrict)
	require.Equal(t, types.ScopeAskUser, d.Kind)
}

func TestCheckFileChangeOutsideAllowedStrictBlocks(t *testing.T) {
	d := CheckFileChange("docs/readme.md", testScope(), ModeStrict)
	require.Equal(t, types.ScopeBlock, d.Kind)
}

func TestCheckFileChangeOutsideAllowedAskAsks(t *testing.T) {
	d := CheckFileChange("docs/readme.md", testScope(), ModeAsk)
	require.Equal(t, types.ScopeAskUser, d.Kind)
}

func TestCheckFileChangeOutsideAllowedPermissiveAllows(t *testing.T) {
	d := CheckFileChange("docs/readme.md", testScope(), ModePermissive)
	require.Equal(t, types.ScopeAllow, d.Kind)
}

func TestCheckFileChangeInAllowedAllows(t *testing.T) {
	d := CheckFileChange("src/a.ts", testScope(), ModeStrict)
	require.Equal(t, types.ScopeAllow, d.Kind)
}

func TestCheckFileChangeEmptyAllowedDefaultsAllow(t *testing.T) {
	s := types.Scope{Forbidden: []string{"node_modules/**"}}
	d := CheckFileChange("anything.go", s, ModeStrict)
	require.Equal(t, types.ScopeAllow, d.Kind)
}

func TestCheckFileChangesBlockTakesPrecedence(t *testing.T) {
	d := CheckFileChanges([]string{"config/a.yaml", "node_modules/x.js"}, testScope(), ModeAsk)
	require.Equal(t, types.ScopeBlock, d.Kind)
	require.Equal(t, []string{"node_modules/x.js"}, d.Files)
}

func TestGuardGetChangesToRevertExcludesApproved(t *testing.T) {
	g := NewGuard()
	g.Approve("node_modules/x.js")
	changes := []string{"node_modules/x.js", "node_modules/y.js"}
	toRevert := g.GetChangesToRevert(changes, testScope(), ModeStrict)
	require.Equal(t, []string{"node_modules/y.js"}, toRevert)
}

func TestMatchesDotstarGlobAndDirectoryPrefix(t *testing.T) {
	require.True(t, matches("src/.env", "src/**"))
	require.True(t, matches("src/nested/a.ts", "src"))
	require.False(t, matches("other/a.ts", "src"))
}
