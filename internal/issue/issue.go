// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	RegistryOpenFailedId Id = iota + 1
	PackageNotFoundId
	NoMatchingVersionId
	InvalidRefId
	DestinationLockedId
	ConfigLoadFailedId
	RemoteSyncFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to look up the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	registryOpenFailedIssue = &Issue{
		id: RegistryOpenFailedId,
		mdMsg: `
# Could not open the registry!

The registry directory could not be read.

## Things you can try:
- Check that the registry directory exists and is readable
- Point skillhub at a different registry:
~~~
$ skillhub --registry /path/to/registry list
~~~
- Or set it permanently in your config file:
~~~cue
registry_dir: "/path/to/registry"
~~~`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

The registry has no package under that namespace/name.

## Things you can try:
- List everything the registry knows about:
~~~
$ skillhub list
~~~
- Check for typos in the namespace or name
- Publish the package first:
~~~
$ skillhub publish /path/to/package-dir
~~~`,
	}

	noMatchingVersionIssue = &Issue{
		id: NoMatchingVersionId,
		mdMsg: `
# No version satisfies the constraint!

The package exists, but none of its published versions match.

## Things you can try:
- See which versions are published:
~~~
$ skillhub list acme/review
~~~
- Loosen the constraint (e.g. ` + "`^1.0.0`" + ` instead of ` + "`=1.3.0`" + `)
- Note that pre-releases are skipped unless the constraint names one:
~~~
$ skillhub install acme/review@2.0.0-rc.1
~~~`,
	}

	invalidRefIssue = &Issue{
		id: InvalidRefId,
		mdMsg: `
# Invalid package reference!

References look like ` + "`namespace/name`" + ` with an optional ` + "`@constraint`" + `.

## Valid examples:
~~~
acme/review
acme/review@1.2.0
acme/review@^1.0.0
acme/review@~1.2
acme/review@1.x
~~~

Namespaces and names are lowercase letters, digits and hyphens,
starting with a letter.`,
	}

	destinationLockedIssue = &Issue{
		id: DestinationLockedId,
		mdMsg: `
# Destination is locked!

Another skillhub process is currently modifying this destination.

## Things you can try:
- Wait for the other install/uninstall to finish and retry
- If a previous run crashed, remove the stale lock file:
~~~
$ rm <destination>/.skillhub.lock
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the skillhub configuration file.

## Configuration file locations:
- Linux: ~/.config/skillhub/config.cue
- macOS: ~/Library/Application Support/skillhub/config.cue
- Windows: %APPDATA%\skillhub\config.cue

## Things you can try:
- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
registry_dir:    "/home/user/.skillhub/registry"
destination_dir: "/home/user/.skillhub/skills"
remote_url:      "https://skills.example.com"

ui: {
  verbose: false
}
~~~`,
	}

	remoteSyncFailedIssue = &Issue{
		id: RemoteSyncFailedId,
		mdMsg: `
# Remote sync failed!

Could not fetch the remote registry index.

## Things you can try:
- Check the remote URL:
~~~
$ skillhub config show
~~~
- Check your network connection
- Retry later; transient server errors are retried automatically,
  but only a handful of times`,
	}

	issues = map[Id]*Issue{
		registryOpenFailedIssue.Id(): registryOpenFailedIssue,
		packageNotFoundIssue.Id():    packageNotFoundIssue,
		noMatchingVersionIssue.Id():  noMatchingVersionIssue,
		invalidRefIssue.Id():         invalidRefIssue,
		destinationLockedIssue.Id():  destinationLockedIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		remoteSyncFailedIssue.Id():   remoteSyncFailedIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
