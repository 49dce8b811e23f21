package diagnostic

// Diagnostic codes.
const (
	CodeMalformedDirective   = "malformed_directive"
	CodeUnknownKey           = "unknown_key"
	CodeUnknownScope         = "unknown_scope"
	CodeDuplicateKey         = "duplicate_key"
	CodeDuplicateConversion  = "duplicate_conversion"
	CodeUnresolvedPath       = "unresolved_path"
	CodeUnwrapNonOptional    = "unwrap_non_optional"
	CodeRenamePositional     = "rename_positional"
	CodeDefaultFillPosition  = "default_fill_positional"
	CodeUnsupportedKind      = "unsupported_kind"
	CodeEmptySum             = "empty_sum"
	CodeUnknownVariantStyle  = "unknown_variant_style"
	CodeUnmappedTargetField  = "unmapped_target_field"
	CodeUnknownTargetType    = "unknown_target_type"
	CodeUnknownTargetField   = "unknown_target_field"
	CodeUnknownTargetVariant = "unknown_target_variant"
	CodeIncompatibleTypes    = "incompatible_types"
	CodeUnsupportedWrapper   = "unsupported_wrapper"
	CodePackageLoad          = "package_load"
	CodeNoConversions        = "no_conversions"
	CodeVariantSkipped       = "variant_skipped"
)
