// internal/installer/discover.go
package installer

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"typings-worker/internal/config"
	"typings-worker/internal/logging"
	"typings-worker/internal/npm"
	"typings-worker/internal/registry"
	"typings-worker/pkg/models"
)

// Sender est la partie émission du canal dont le collaborateur a besoin
type Sender interface {
	Send(response any) error
}

// Discoverer est le collaborateur de découverte: il filtre les typings
// demandés par le host contre la safelist, les alias et le registre, puis
// installe les manquants par lots bornés par la limite de throttle.
type Discoverer struct {
	npm      *npm.Installer
	channel  Sender
	diag     *logging.Log
	snapshot registry.Snapshot
	safeList registry.SafeList
	typesMap registry.TypesMap

	cacheDir      string
	throttleLimit int

	// Typings déjà installés pendant cette session: jamais réinstallés
	installed    map[string]struct{}
	openProjects map[string]struct{}

	requestSeq int
}

// NewDiscoverer charge la safelist et la type-map depuis leurs fichiers
// configurés (tolérants aux absences) et construit le collaborateur
func NewDiscoverer(installer *npm.Installer, channel Sender, diag *logging.Log, cfg *config.Config, snapshot registry.Snapshot) *Discoverer {
	return &Discoverer{
		npm:           installer,
		channel:       channel,
		diag:          diag,
		snapshot:      snapshot,
		safeList:      registry.LoadSafeList(cfg.SafeListPath, diag),
		typesMap:      registry.LoadTypesMap(cfg.TypesMapPath, diag),
		cacheDir:      cfg.GlobalCacheDir,
		throttleLimit: max(cfg.ThrottleLimit, 1),
		installed:     make(map[string]struct{}),
		openProjects:  make(map[string]struct{}),
	}
}

// InstallTypings traite une requête discover: sélection des typings
// manquants, installation dans le cache global, réponse de clôture
func (d *Discoverer) InstallTypings(req *models.DiscoverRequest) {
	d.openProjects[req.ProjectName] = struct{}{}

	missing := d.selectTypings(req)
	if len(missing) == 0 {
		d.sendDone(req.ProjectName, true, nil)
		return
	}

	if d.diag.IsEnabled() {
		d.diag.WriteLine(fmt.Sprintf("Project '%s' is missing typings: %v", req.ProjectName, missing))
	}

	success := true
	var installedNow []string
	for _, batch := range chunk(missing, d.throttleLimit) {
		packages := make([]string, len(batch))
		for i, name := range batch {
			packages[i] = fmt.Sprintf("@types/%s@latest", name)
		}

		d.requestSeq++
		d.npm.Install(context.Background(), d.requestSeq, packages, d.cacheDir, func(ok bool) {
			if ok {
				installedNow = append(installedNow, batch...)
			} else {
				success = false
			}
		})
	}

	for _, name := range installedNow {
		d.installed[name] = struct{}{}
	}
	d.sendDone(req.ProjectName, success, installedNow)
}

// CloseProject abandonne l'état de suivi du projet fermé
func (d *Discoverer) CloseProject(req *models.CloseProjectRequest) {
	delete(d.openProjects, req.ProjectName)
	if d.diag.IsEnabled() {
		d.diag.WriteLine(fmt.Sprintf("Closed project '%s'", req.ProjectName))
	}
}

// selectTypings retient les typings installables: inclusions explicites et
// inférences de noms de fichiers (autorisées par la safelist), résolues par
// la type-map, restreintes au registre, moins les exclusions et le déjà
// installé
func (d *Discoverer) selectTypings(req *models.DiscoverRequest) []string {
	excluded := make(map[string]struct{}, len(req.TypingOptions.Exclude))
	for _, name := range req.TypingOptions.Exclude {
		excluded[name] = struct{}{}
	}

	candidates := append([]string{}, req.TypingOptions.Include...)
	if req.TypingOptions.EnableAutoDiscovery {
		for _, fileName := range req.FileNames {
			if name, ok := typingNameFromFile(fileName); ok && d.safeList.Allows(name) {
				candidates = append(candidates, name)
			}
		}
	}

	var missing []string
	seen := make(map[string]struct{})
	for _, candidate := range candidates {
		name := d.typesMap.Resolve(candidate)

		if _, ok := excluded[candidate]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		if !d.snapshot.Has(name) {
			if d.diag.IsEnabled() {
				d.diag.WriteLine(fmt.Sprintf("'%s' is not in the registry, skipping", name))
			}
			continue
		}
		if _, ok := d.installed[name]; ok {
			continue
		}
		missing = append(missing, name)
	}
	return missing
}

// typingNameFromFile dérive un nom de typing candidat du nom d'un fichier
// JavaScript: "jquery-3.6.min.js" -> "jquery"
func typingNameFromFile(fileName string) (string, bool) {
	base := filepath.Base(fileName)
	if !strings.HasSuffix(base, ".js") {
		return "", false
	}
	name := strings.TrimSuffix(base, ".js")
	name = strings.TrimSuffix(name, ".min")

	// Retirer un suffixe de version du type "-3.6" ou "-1.12.4"
	if idx := strings.Index(name, "-"); idx > 0 {
		suffix := name[idx+1:]
		if suffix != "" && strings.IndexFunc(suffix, func(r rune) bool {
			return (r < '0' || r > '9') && r != '.'
		}) == -1 {
			name = name[:idx]
		}
	}

	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}

// chunk découpe names en lots d'au plus size éléments
func chunk(names []string, size int) [][]string {
	var batches [][]string
	for len(names) > size {
		batches = append(batches, names[:size])
		names = names[size:]
	}
	if len(names) > 0 {
		batches = append(batches, names)
	}
	return batches
}

func (d *Discoverer) sendDone(projectName string, success bool, typings []string) {
	if typings == nil {
		typings = []string{}
	}
	if err := d.channel.Send(&models.TypingsInstalledResponse{
		Kind:        models.EventTypingsInstalled,
		ProjectName: projectName,
		Success:     success,
		Typings:     typings,
	}); err != nil {
		log.Printf("Failed to send discover response: %v", err)
	}
}
