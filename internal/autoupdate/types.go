package autoupdate

// UpdateInfo contains information about an available plugin update
type UpdateInfo struct {
	Dir        string // plugin directory name
	Name       string // plugin header name
	Path       string // absolute path of the plugin checkout
	CurrentVer string // current commit
	RemoteVer  string // remote commit
	HasUpdate  bool
}

// CheckResult contains the result of an update check
type CheckResult struct {
	Plugins      []UpdateInfo
	HasAnyUpdate bool
	Errors       []error // non-fatal errors during check
}

// TotalUpdates returns the total number of available updates
func (r *CheckResult) TotalUpdates() int {
	count := 0
	for _, p := range r.Plugins {
		if p.HasUpdate {
			count++
		}
	}
	return count
}

// Pending returns the plugins that have an update available
func (r *CheckResult) Pending() []UpdateInfo {
	var pending []UpdateInfo
	for _, p := range r.Plugins {
		if p.HasUpdate {
			pending = append(pending, p)
		}
	}
	return pending
}
