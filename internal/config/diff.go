package config

// ConfigDiff describes what changed between two configs, restricted to
// fields that are safe to apply without a process restart: the MCP server
// roster and the log level.
type ConfigDiff struct {
	ServersChanged bool
	ServerChanges  []ServerDiff

	LogLevelChanged bool
	NewLogLevel     LogLevel
}

// ServerDiff describes what changed for a single server entry between two
// configs, keyed by ID.
type ServerDiff struct {
	ID        string
	Added     bool
	Removed   bool
	Reconnect bool // transport, command, args, cwd, env, url, or headers changed
}

// Diff compares old and new configs and returns what changed: servers added,
// removed, or flagged for Reconnect, and a log-level change. It only reports
// differences; the bridge logs the result from its watcher callback and
// does not reconnect servers or change the log level at runtime.
func Diff(old, newCfg *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != newCfg.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = newCfg.Server.LogLevel
	}

	oldServers := make(map[string]*ServerEntry, len(old.Host.Servers))
	for i := range old.Host.Servers {
		oldServers[old.Host.Servers[i].ID] = &old.Host.Servers[i]
	}
	newServers := make(map[string]*ServerEntry, len(newCfg.Host.Servers))
	for i := range newCfg.Host.Servers {
		newServers[newCfg.Host.Servers[i].ID] = &newCfg.Host.Servers[i]
	}

	for id, oldEntry := range oldServers {
		newEntry, exists := newServers[id]
		if !exists {
			d.ServerChanges = append(d.ServerChanges, ServerDiff{ID: id, Removed: true})
			d.ServersChanged = true
			continue
		}
		if serverEntryChanged(oldEntry, newEntry) {
			d.ServerChanges = append(d.ServerChanges, ServerDiff{ID: id, Reconnect: true})
			d.ServersChanged = true
		}
	}
	for id := range newServers {
		if _, exists := oldServers[id]; !exists {
			d.ServerChanges = append(d.ServerChanges, ServerDiff{ID: id, Added: true})
			d.ServersChanged = true
		}
	}

	return d
}

func serverEntryChanged(old, newEntry *ServerEntry) bool {
	if old.Transport != newEntry.Transport || old.Command != newEntry.Command || old.Cwd != newEntry.Cwd || old.URL != newEntry.URL {
		return true
	}
	if !stringSlicesEqual(old.Args, newEntry.Args) {
		return true
	}
	if !stringMapsEqual(old.Env, newEntry.Env) || !stringMapsEqual(old.Headers, newEntry.Headers) {
		return true
	}
	return false
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func stringMapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
