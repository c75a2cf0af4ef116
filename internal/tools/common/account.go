package common

// GetAccountFromArgs extracts the account name from request arguments,
// defaulting to "default". The server operates against one Nextcloud account
// at a time; the argument exists so multi-account deployments can label
// metrics and audit logs per account.
func GetAccountFromArgs(args map[string]interface{}) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	return "default"
}
