package types

// ScopeDecisionKind is the tag of a ScopeDecision.
type ScopeDecisionKind string

const (
	ScopeAllow    ScopeDecisionKind = "ALLOW"
	ScopeAskUser  ScopeDecisionKind = "ASK_USER"
	ScopeBlock    ScopeDecisionKind = "BLOCK"
)

// ScopeDecision is the tagged variant ALLOW | ASK_USER{files,reason} |
// BLOCK{files,reason}. Files/Reason are meaningless when Kind is
// ScopeAllow and are left zero-valued.
type ScopeDecision struct {
	Kind   ScopeDecisionKind
	Files  []string
	Reason string
}

// Allow constructs the ALLOW variant.
func Allow() ScopeDecision { return ScopeDecision{Kind: ScopeAllow} }

// AskUser constructs the ASK_USER variant.
func AskUser(files []string, reason string) ScopeDecision {
	return ScopeDecision{Kind: ScopeAskUser, Files: files, Reason: reason}
}

// Block constructs the BLOCK variant.
func Block(files []string, reason string) ScopeDecision {
	return ScopeDecision{Kind: ScopeBlock, Files: files, Reason: reason}
}
