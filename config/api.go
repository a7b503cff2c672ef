package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Health and webhook delivery are unauthenticated (webhook signature
	// verification happens in the transport collaborator); GraphQL catalog
	// reads are public.
	return []string{"/health", "/webhooks/fulfillment", "/graphql", "/playground"}
}
