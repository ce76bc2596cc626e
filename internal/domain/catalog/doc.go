/*
Package catalog keeps the set of applications the launcher can start.

Applications come from manifests on disk or from the API. A manifest is a
YAML, TOML or JSON file named app.<ext> or <name>.app.<ext>, found by a
recursive walk of the catalog directory. Without an id field the id comes
from <name>, or from the directory of an app.<ext> file. Every record is
normalized and validated on the way in and copied on the way out.

	c := catalog.New()
	report, err := catalog.NewLoader(c, logger).Load(ctx, "./apps")
	for _, app := range c.Autostart() {
		launcher.Launch(ctx, app)
	}

A manifest looks like:

	id: notes
	title: Notes
	url: http://localhost:5173
	autostart: true

Local applications set kind: local and content_dir, relative to the
manifest file.
*/
package catalog
