package steps

// RegisterDefaults registers all built-in handlers.
func RegisterDefaults(reg *Registry) {
	RegisterGivenHandlers(reg)
	RegisterWhenHandlers(reg)
	RegisterThenHandlers(reg)
	RegisterDataHandlers(reg)
	RegisterMiscHandlers(reg)
}
