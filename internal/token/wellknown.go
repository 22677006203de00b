package token

// Well-known contract identifiers on Stacks mainnet.
var (
	IDSBTC   = MustParseID("SM3VDXK3WZZSA84XXFKAFAF15NNZX32CTSG82JFQ4.sbtc-token")
	IDXBTC   = MustParseID("SP3DX3H4FEYZJZ586MFBS25ZW3HZDMEW92260QE.Wrapped-Bitcoin")
	IDAeUSDC = MustParseID("SP3Y2ZSH8P7D50B0VBTSX11S7XSG24M1VB9YFQA4K.token-aeusdc")
	IDUSDA   = MustParseID("SP2C2YFP12AJZB4MABJBAJ55XECVS7E4PMMZ89YZR.usda-token")
	IDALEX   = MustParseID("SP102V8P0F7JX67ARQ77WEA3D3CFB5XW39REDT0AM.token-alex")
	IDWELSH  = MustParseID("SP3NE50GEXFG9SZGTT51P40X2CKYSZ5CC4ZTZ7A2G.welshcorgicoin-token")
	IDSTX    = NewNativeID()
)

// Well-known tokens (pre-created instances).
var (
	SBTC   = New(IDSBTC, "sBTC", 8, WithName("sBTC"), AsAnchor())
	XBTC   = New(IDXBTC, "xBTC", 8, WithName("Wrapped Bitcoin"))
	AeUSDC = New(IDAeUSDC, "aeUSDC", 6, WithName("Allbridge USDC"), AsStablecoin())
	USDA   = New(IDUSDA, "USDA", 6, WithName("Arkadiko USDA"), AsStablecoin())
	ALEX   = New(IDALEX, "ALEX", 8, WithName("ALEX Lab"))
	WELSH  = New(IDWELSH, "WELSH", 6, WithName("Welshcorgicoin"))
	STX    = New(IDSTX, "STX", 6, WithName("Stacks"))
)

// DefaultRegistry returns a registry pre-populated with well-known
// mainnet tokens. sBTC is the anchor; aeUSDC and USDA are pinned stables.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(SBTC)
	r.Register(XBTC)
	r.Register(AeUSDC)
	r.Register(USDA)
	r.Register(ALEX)
	r.Register(WELSH)
	r.Register(STX)

	return r
}
