// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	StoreNotConfiguredId Id = iota + 1
	ConfigLoadFailedId
	InvalidDescriptorId
	VersionNotFoundId
	VersionReleasedId
	DependencyConflictId
	TransactionInProgressId
	RemoteSyncFailedId
	SchemaUnsupportedId
	ManifestInvalidId
	InvariantViolatedId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue as styled markdown. stylePath names a glamour
// style such as "dark", "light" or "notty".
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
		for _, link := range i.extLinks {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	render = glamour.Render

	storeNotConfiguredIssue = &Issue{
		id: StoreNotConfiguredId,
		mdMsg: `
# No cauldron configured!

This command needs a cauldron repository but none is set.

## Things you can try:
- Set the remote in your config file:
~~~cue
store: {
	url: "git@github.com:corp/cauldron.git"
}
~~~
- Or pass it for a single run:
~~~
$ CAULDRON_STORE_URL=git@github.com:corp/cauldron.git cauldron get
~~~
- Check the resolved configuration:
~~~
$ cauldron config show
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Your configuration file could not be read or does not match the schema.

## Things you can try:
- Check the CUE syntax of the file
- Compare it with the defaults:
~~~
$ cauldron config show
~~~
- Move the file aside and retry with defaults`,
	}

	invalidDescriptorIssue = &Issue{
		id: InvalidDescriptorId,
		mdMsg: `
# Invalid descriptor!

Native applications are addressed as ` + "`name[:platform[:version]]`" + `, and
dependencies as ` + "`[@scope/]name[@version]`" + `.

## Examples:
~~~
walmart
walmart:android
walmart:android:17.0.0
@walmart/react-native-maps@1.2.0
~~~

Platforms are ` + "`android`" + ` and ` + "`ios`" + `.`,
	}

	versionNotFoundIssue = &Issue{
		id: VersionNotFoundId,
		mdMsg: `
# Not found in the cauldron!

The native application, platform, version or MiniApp does not exist.

## Things you can try:
- List what the cauldron holds:
~~~
$ cauldron get
~~~
- Create the version first:
~~~
$ cauldron add version walmart:android:17.0.0
~~~`,
	}

	versionReleasedIssue = &Issue{
		id: VersionReleasedId,
		mdMsg: `
# Version already released!

The container of a released version is frozen. Only its binary store,
configuration, yarn locks and code push entries can change.

## Things you can try:
- Create a new version from it and change that one:
~~~
$ cauldron add version walmart:android:17.1.0 --copy-from walmart:android:17.0.0
~~~`,
	}

	dependencyConflictIssue = &Issue{
		id: DependencyConflictId,
		mdMsg: `
# Native dependency version conflict!

Several MiniApps declare different versions of the same native dependency.
A container can only ship one.

## Things you can try:
- Align the MiniApps on one version and retry
- Inspect the conflict without changing anything:
~~~
$ cauldron resolve walmart:android:17.0.0 --manifest release.yaml
~~~
- Accept the highest version:
~~~
$ cauldron add miniapps walmart:android:17.0.0 --manifest release.yaml --force
~~~`,
	}

	transactionInProgressIssue = &Issue{
		id: TransactionInProgressId,
		mdMsg: `
# A cauldron transaction is already running!

Only one change to a cauldron working copy can run at a time.

## Things you can try:
- Wait for the running command to finish, then retry`,
	}

	remoteSyncFailedIssue = &Issue{
		id: RemoteSyncFailedId,
		mdMsg: `
# Could not synchronize with the cauldron remote!

Fetching from or pushing to the remote failed. When the push was rejected,
someone else changed the cauldron first; nothing of yours was published.

## Things you can try:
- Retry the command; it starts again from the latest remote state
- Check your network access and credentials (SSH key in ~/.ssh, or
  GITHUB_TOKEN / GITLAB_TOKEN / GIT_TOKEN)`,
	}

	schemaUnsupportedIssue = &Issue{
		id: SchemaUnsupportedId,
		mdMsg: `
# Unsupported cauldron schema!

The cauldron document is malformed, or was written by a newer cauldron.

## Things you can try:
- Upgrade cauldron to the latest release
- Validate the cauldron.json of the remote by hand`,
	}

	manifestInvalidIssue = &Issue{
		id: ManifestInvalidId,
		mdMsg: `
# Invalid manifest!

The MiniApp manifest could not be read.

## Expected format:
~~~yaml
miniapps:
  - package: miniapp-a@1.0.0
    dependencies:
      - react-native@0.59.8
~~~

A MiniApp ` + "`package.json`" + ` is accepted as well.`,
	}

	invariantViolatedIssue = &Issue{
		id: InvariantViolatedId,
		mdMsg: `
# The change would corrupt the cauldron!

The resulting document breaks a cauldron rule, such as a duplicate native
dependency or MiniApp in one version. The remote was not changed.`,
	}

	issues = map[Id]*Issue{
		storeNotConfiguredIssue.Id():    storeNotConfiguredIssue,
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		invalidDescriptorIssue.Id():     invalidDescriptorIssue,
		versionNotFoundIssue.Id():       versionNotFoundIssue,
		versionReleasedIssue.Id():       versionReleasedIssue,
		dependencyConflictIssue.Id():    dependencyConflictIssue,
		transactionInProgressIssue.Id(): transactionInProgressIssue,
		remoteSyncFailedIssue.Id():      remoteSyncFailedIssue,
		schemaUnsupportedIssue.Id():     schemaUnsupportedIssue,
		manifestInvalidIssue.Id():       manifestInvalidIssue,
		invariantViolatedIssue.Id():     invariantViolatedIssue,
	}
)

// Values returns every issue of the catalog ordered by Id.
func Values() []*Issue {
	out := slices.Collect(maps.Values(issues))
	slices.SortFunc(out, func(a, b *Issue) int { return int(a.id - b.id) })
	return out
}

// Get returns the issue with the given Id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
