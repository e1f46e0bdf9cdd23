package config

// Git hook types a script can be installed for
const (
	HookTypeCommitMsg        = "commit-msg"
	HookTypePostCheckout     = "post-checkout"
	HookTypePostCommit       = "post-commit"
	HookTypePostMerge        = "post-merge"
	HookTypePostRewrite      = "post-rewrite"
	HookTypePreCommit        = "pre-commit"
	HookTypePreMergeCommit   = "pre-merge-commit"
	HookTypePrePush          = "pre-push"
	HookTypePreRebase        = "pre-rebase"
	HookTypePrepareCommitMsg = "prepare-commit-msg"
)

// StageManual is only run when requested with --hook-stage manual.
const StageManual = "manual"

// HookTypes lists every installable git hook type.
var HookTypes = []string{
	HookTypeCommitMsg,
	HookTypePostCheckout,
	HookTypePostCommit,
	HookTypePostMerge,
	HookTypePostRewrite,
	HookTypePreCommit,
	HookTypePreMergeCommit,
	HookTypePrePush,
	HookTypePreRebase,
	HookTypePrepareCommitMsg,
}

// Stages lists every stage a hook can be bound to.
var Stages = append(append([]string{}, HookTypes...), StageManual)

// legacyStages maps pre-4.0 stage names to their current names.
var legacyStages = map[string]string{
	"commit":       HookTypePreCommit,
	"merge-commit": HookTypePreMergeCommit,
	"push":         HookTypePrePush,
}

// Languages lists the hook languages a manifest may declare.
var Languages = []string{
	"conda", "coursier", "dart", "docker", "docker_image", "dotnet", "fail",
	"golang", "haskell", "julia", "lua", "node", "perl", "pygrep", "python",
	"r", "ruby", "rust", "script", "swift", "system",
}

// MetaHookIDs lists the hooks available under repo: meta.
var MetaHookIDs = []string{"check-hooks-apply", "check-useless-excludes", "identity"}

// NormalizeStage returns the current name for a possibly legacy stage name.
func NormalizeStage(stage string) string {
	if renamed, ok := legacyStages[stage]; ok {
		return renamed
	}
	return stage
}
