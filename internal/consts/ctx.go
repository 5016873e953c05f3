package consts

// CtxKey is the type used for context value keys across the scheduler.
type CtxKey string

const (
	CtxKeyLogID     CtxKey = "log_id"
	CtxKeyRuleID    CtxKey = "rule_id"
	CtxKeyRecipient CtxKey = "recipient"
)
