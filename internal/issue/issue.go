// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"

	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ManifestNotFoundId Id = iota + 1
	ManifestParseErrorId
	ProvisionFailedId
	ProfileParseErrorId
	ReferenceNotFoundId
	ToleranceConfigErrorId
	ConfigLoadFailedId
	HistoryUnavailableId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation links shown under "See also"
	extLinks []HttpLink  // external links that might be useful for the user
}

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

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# No input manifest found!

We searched for an input manifest but couldn't find one in the expected
locations.

## Search locations (in order of precedence):
1. The path given with --manifest
2. The manifest path in your config file
3. manifest.yaml in the current directory

## Things you can try:
- Point at an existing manifest:
~~~
$ simbench provision --manifest inputs/manifest.yaml
~~~

## Example manifest structure:
~~~yaml
inputs:
  - name: initial-conditions
    source_uri: /data/shared/ic.grib
    local_path: input/ic.grib
    strategy: symlink
  - name: climatology
    source_uri: https://data.example.int/clim.tar.gz
    local_path: input/clim.tar.gz
    strategy: download
    checksum: 9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse the input manifest!

Your manifest contains syntax errors or invalid entries.

## Common issues:
- Invalid YAML syntax (indentation, missing colons)
- Duplicate local_path values
- A remote source_uri combined with the symlink or copy strategy
- An unknown checksum_algorithm

## Things you can try:
- Check the error message above for the offending item
- Run with verbose mode for more details:
~~~
$ simbench --verbose provision
~~~`,
	}

	provisionFailedIssue = &Issue{
		id: ProvisionFailedId,
		mdMsg: `
# Provisioning failed!

One or more input items could not be materialized.

## Common causes:
- The source path does not exist or is unreadable
- A download timed out or the server returned an error
- A checksum mismatch right after a fresh copy or download, which means
  the source itself does not carry the declared content

## Things you can try:
- Re-run provisioning; it is idempotent and only touches unfinished items:
~~~
$ simbench provision
~~~

- Allow replacing stale local files:
~~~
$ simbench provision --overwrite
~~~

- Raise the download timeout in your config file`,
	}

	profileParseErrorIssue = &Issue{
		id: ProfileParseErrorId,
		mdMsg: `
# Failed to read the profile dump!

The profile dump file could not be opened or read.

## Things you can try:
- Check the dump path; per-rank dumps are usually named like drhook.prof.1
- Confirm the run had profiling enabled (DR_HOOK=1, DR_HOOK_OPT=prof)
- Individual malformed lines never abort a parse; they are reported as
  diagnostics. Run with verbose mode to see them:
~~~
$ simbench --verbose profile parse drhook.prof.*
~~~`,
	}

	referenceNotFoundIssue = &Issue{
		id: ReferenceNotFoundId,
		mdMsg: `
# No reference table found!

Comparison needs a stored reference result table.

## Things you can try:
- Point at an existing reference:
~~~
$ simbench compare --observed results.tsv --reference ref/results.tsv
~~~

- Promote the current results to a reference for future runs:
~~~
$ cp results.tsv ref/results.tsv
~~~`,
	}

	toleranceConfigErrorIssue = &Issue{
		id: ToleranceConfigErrorId,
		mdMsg: `
# Invalid tolerance rules!

The tolerance rule file could not be used.

## Common issues:
- Negative absolute or relative tolerances
- Malformed glob patterns
- Invalid TOML syntax

## Example of a valid rule file:
~~~toml
[[rule]]
pattern = "self_time_*"
relative = 0.05

[[rule]]
pattern = "norm"
absolute = 1e-9
~~~

Rules are tried in order; the first matching pattern wins. Metrics with no
matching rule are compared exactly.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

Could not load the simbench configuration file.

## Configuration file locations:
- Linux: ~/.config/simbench/config.cue
- macOS: ~/Library/Application Support/simbench/config.cue
- Windows: %APPDATA%\simbench\config.cue

## Things you can try:
- Create a default configuration:
~~~
$ simbench config init
~~~

- Check the configuration syntax
- Remove the config file to use defaults

## Example configuration:
~~~cue
destination_root: "./rundir"
manifest: "./manifest.yaml"
parallelism: 4
checksum_algorithm: "sha256"

ui: {
  color_scheme: "auto"
  verbose: false
}
~~~`,
	}

	historyUnavailableIssue = &Issue{
		id: HistoryUnavailableId,
		mdMsg: `
# History database unavailable!

The run-history database could not be opened.

## Common causes:
- The configured history path points into an unwritable directory
- The database file is corrupted

## Things you can try:
- Check the history path in your config file
- Move the broken database aside; a fresh one is created automatically:
~~~
$ mv ~/.local/state/simbench/history.db ~/.local/state/simbench/history.db.bak
~~~`,
	}

	issues = map[Id]*Issue{
		manifestNotFoundIssue.Id():     manifestNotFoundIssue,
		manifestParseErrorIssue.Id():   manifestParseErrorIssue,
		provisionFailedIssue.Id():      provisionFailedIssue,
		profileParseErrorIssue.Id():    profileParseErrorIssue,
		referenceNotFoundIssue.Id():    referenceNotFoundIssue,
		toleranceConfigErrorIssue.Id(): toleranceConfigErrorIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
		historyUnavailableIssue.Id():   historyUnavailableIssue,
	}
)

func Values() []*Issue {
	return slices.Collect(maps.Values(issues))
}

func Get(id Id) *Issue {
	return issues[id]
}
