package file

// File names inside the data directory
const (
	EntitlementsFile = "flight_data.json"
	OwnedItemsFile   = "owned_items.json"
)

// Error messages
const (
	ErrMsgCreateDataDir = "failed to create data directory"
	ErrMsgReadFile      = "failed to read data file"
	ErrMsgDecodeFile    = "failed to decode data file"
	ErrMsgWriteFile     = "failed to write data file"
)

// Log messages
const (
	LogMsgSkippingInvalidOwner = "Skipping entry with invalid owner id"
	LogMsgLoaded               = "File storage loaded"
)
