package manifest

import "github.com/bordeux/rpm-repo/internal/models"

// Result is the outcome of a reconciliation: the full replacement package
// set and the on-disk files it obsoletes.
type Result struct {
	Packages  []models.Package
	Deletions []string
}

// Reconcile computes the new authoritative package set. Pure: it touches no
// files, so a dry run can inspect the outcome without side effects.
//
// Packages owned by projects outside updatedRepos are preserved as-is.
// Packages owned by updated projects are replaced wholesale by what the
// current fetch produced, even when that is fewer than before: a refresh
// prunes to whatever succeeded. Projects listed in keepOnEmpty are the
// exception; when their refresh produced nothing at all, their previous
// records are retained instead of pruned.
//
// Deletions is every file in onDisk whose name is absent from the final set,
// restoring the invariant that disk contents match the manifest.
func Reconcile(existing []models.Package, updatedRepos map[string]bool, fetched []models.Package, keepOnEmpty map[string]bool, onDisk []string) Result {
	fetchedPerRepo := make(map[string]int)
	for _, pkg := range fetched {
		fetchedPerRepo[pkg.ProjectRepo]++
	}

	var final []models.Package
	for _, pkg := range existing {
		if !updatedRepos[pkg.ProjectRepo] {
			final = append(final, pkg)
			continue
		}
		if keepOnEmpty[pkg.ProjectRepo] && fetchedPerRepo[pkg.ProjectRepo] == 0 {
			final = append(final, pkg)
		}
	}
	final = append(final, fetched...)

	keep := make(map[string]bool, len(final))
	for _, pkg := range final {
		keep[pkg.Filename] = true
	}

	var deletions []string
	for _, name := range onDisk {
		if !keep[name] {
			deletions = append(deletions, name)
		}
	}

	return Result{Packages: final, Deletions: deletions}
}
