package registry

// TokenInfo carries the registry-side bookkeeping for a minted token: the
// metadata recorded at mint time, the currency deposit reserved from the
// owner for it, and the registry the token was minted through.
type TokenInfo struct {
	Metadata []byte
	Deposit  Balance
	Registry RegistryID
}
