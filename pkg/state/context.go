package state

// SetContext sets a context value for the current scope.
// The value is visible to every computation created below it via GetContext.
// Outside any scope the call is ignored.
func SetContext(key, value any) {
	if o := current().owner; o != nil {
		o.SetValue(key, value)
	}
}

// GetContext retrieves a context value from the nearest scope that set key.
// Returns nil if no value is found.
func GetContext(key any) any {
	o := current().owner
	if o == nil {
		return nil
	}
	v, _ := o.Value(key)
	return v
}

// OnCleanup registers fn with the current scope. Inside an effect or memo
// it runs before the next run and on disposal; inside CreateRoot it runs
// when the root is disposed. Outside any scope fn is never called.
func OnCleanup(fn func()) {
	rt := current()
	if rt.owner == nil {
		rt.logger.Debug("state: OnCleanup called outside a scope")
		return
	}
	rt.owner.OnCleanup(fn)
}
