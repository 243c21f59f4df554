package nnsplug

// User-facing messages for the nnsplug command tree
const (
	MsgRootShort = "Inspect and exercise nnstreamer subplugins"
	MsgRootLong  = `nnsplug inspects the subplugin search configuration, resolves subplugin
names to module files, and loads modules to verify that they self-register.`

	MsgFlagVerbose = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagConfig  = "Configuration file (default is NNSTREAMER_CONF or the XDG config dir)"

	MsgListShort = "List discoverable subplugin module files"
	MsgListLong  = `List the module files discoverable for each subplugin kind, scanning the
configured search directories. Pass a kind to restrict the listing.`

	MsgResolveShort = "Resolve a subplugin name to its module file"
	MsgResolveLong  = `Resolve a subplugin name to the module file path that would back it,
searching the kind's directories in priority order. Nothing is loaded.`

	MsgLoadShort = "Load subplugins and verify self-registration"
	MsgLoadLong  = `Load the named subplugins through the registry. A module that opens but
never registers under its expected name is reported as malformed.`

	MsgConfigShort = "Print the effective search configuration"
	MsgConfigLong  = `Print the effective configuration after merging built-in defaults, the
configuration file, and environment overrides.`

	MsgVersionShort = "Print version information"
)
