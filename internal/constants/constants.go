package constants

const (
	AppName          = "private-expense-log"
	WalletFile       = "wallet.json"
	DecryptedFile    = "decrypted_entries.json"
	PreferencesFile  = "preferences.json"
	BadgerDir        = "entries.badger"
	DecryptedKeyBase = "decrypted_entries"

	SchemaV1      = 1
	FilePerm      = 0o600
	DirectoryPerm = 0o700

	// AAD const for the signer keystore
	WalletAAD = "private-expense-log:wallet:v1"

	// AAD for the decrypted-entry cache file.
	EntriesAAD = "private-expense-log:entries:v1"
)

const (
	LocalChainID   uint64 = 31337
	SepoliaChainID uint64 = 11155111
	GatewayChainID uint64 = 55815

	LocalRPCURL = "http://localhost:8545"

	VerifyingContractDecryption        = "0x5ffdaAB0373E62E2ea2944776209aEf29E631A64"
	VerifyingContractInputVerification = "0x812b06e1CDCE800494b79fFE4f925A504a9A9810"

	PublicParamsSize = 2048

	AddEntryGasLimit uint64 = 5_000_000
	DecryptDuration         = "10"
)
