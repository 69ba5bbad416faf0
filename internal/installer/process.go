// internal/installer/process.go
package installer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"typings-worker/internal/config"
	"typings-worker/internal/ipc"
	"typings-worker/internal/logging"
	"typings-worker/internal/npm"
	"typings-worker/internal/project"
	"typings-worker/internal/registry"
	"typings-worker/pkg/models"
)

// TypingsHandler est le collaborateur réutilisé qui traite la découverte de
// typings et la fermeture de projets. Le processus ne dépend que de cette
// interface.
type TypingsHandler interface {
	InstallTypings(req *models.DiscoverRequest)
	CloseProject(req *models.CloseProjectRequest)
}

// Process orchestre le worker: bootstrap unique, puis boucle de dispatch
// des messages du host. Tout s'exécute sur un seul fil logique: chaque
// handler court jusqu'à son terme avant le message suivant, y compris les
// invocations npm.
type Process struct {
	cfg     *config.Config
	diag    *logging.Log
	channel *ipc.Channel
	npm     *npm.Installer
	handler TypingsHandler

	npmLocation string
	snapshot    registry.Snapshot

	// Erreur de bootstrap en attente: écrite une fois au bootstrap, émise
	// et effacée exactement une fois au premier message entrant. La boucle
	// de dispatch étant mono-fil, aucun verrou n'est nécessaire.
	pendingBootstrapError string

	requestSeq int

	// fatalf est remplaçable en test; en production c'est log.Fatalf
	fatalf func(format string, args ...any)
}

// NewProcess crée le processus installeur au-dessus du canal donné.
// handler peut être nil: le collaborateur de découverte par défaut est
// alors créé au bootstrap.
func NewProcess(cfg *config.Config, diag *logging.Log, channel *ipc.Channel, handler TypingsHandler) *Process {
	return &Process{
		cfg:     cfg,
		diag:    diag,
		channel: channel,
		handler: handler,
		fatalf:  log.Fatalf,
	}
}

// Bootstrap exécute la séquence de démarrage unique: résolution de
// l'emplacement npm, création du répertoire de cache, mise à jour du paquet
// registre, chargement du snapshot. Aucune étape ne fait échouer le
// processus: un échec npm est capturé pour livraison différée.
func (p *Process) Bootstrap() {
	exePath, err := os.Executable()
	if err != nil {
		exePath = ""
	}
	p.npmLocation = npm.ResolveLocation(p.cfg.NpmLocation, exePath)
	p.npm = npm.NewInstaller(p.npmLocation, p.cfg.Version, p.diag)

	if p.diag.IsEnabled() {
		p.diag.WriteLine(fmt.Sprintf("Process id: %d", os.Getpid()))
		p.diag.WriteLine(fmt.Sprintf("NPM location: %s", p.npmLocation))
		p.diag.WriteLine(fmt.Sprintf("Global cache location '%s', safe file path '%s', types map path '%s'",
			p.cfg.GlobalCacheDir, p.cfg.SafeListPath, p.cfg.TypesMapPath))
	}

	if err := os.MkdirAll(p.cfg.GlobalCacheDir, 0755); err != nil {
		p.pendingBootstrapError = fmt.Sprintf("failed to create global cache directory '%s': %v", p.cfg.GlobalCacheDir, err)
	} else if err := p.npm.UpdateRegistryPackage(p.cfg.GlobalCacheDir, p.cfg.TypesRegistryPackage); err != nil {
		// Livrée au host au premier message, quand il écoute vraiment
		p.pendingBootstrapError = err.Error()
	}

	// Le chargement a lieu même si la mise à jour a échoué: un snapshot
	// vide est un résultat légitime
	indexPath := filepath.Join(p.cfg.GlobalCacheDir, "node_modules", p.cfg.TypesRegistryPackage, "index.json")
	p.snapshot = registry.Load(indexPath, p.diag)

	if p.handler == nil {
		p.handler = NewDiscoverer(p.npm, p.channel, p.diag, p.cfg, p.snapshot)
	}
}

// Snapshot expose le registre chargé (lecture seule après bootstrap)
func (p *Process) Snapshot() registry.Snapshot {
	return p.snapshot
}

// NpmStats expose les compteurs d'installation pour le endpoint de statut
func (p *Process) NpmStats() models.InstallStats {
	return p.npm.Stats()
}

// Run fait tourner la boucle de messages jusqu'à la déconnexion du host.
// Retourne nil à la déconnexion: le worker sort alors avec un statut de
// succès, sans drainage au-delà de ce qui est déjà synchrone.
func (p *Process) Run(ctx context.Context) error {
	for {
		req, err := p.channel.Read()
		if err == io.EOF {
			if p.diag.IsEnabled() {
				p.diag.WriteLine("!!! Host disconnected, closing the worker")
			}
			log.Printf("Host disconnected, shutting down")
			return nil
		}
		if errors.Is(err, ipc.ErrMalformedMessage) {
			// Bruit de transport: journalisé, la boucle survit
			log.Printf("Skipping unreadable message: %v", err)
			continue
		}
		if err != nil {
			// Erreur définitive du canal: relire ne rendrait jamais que la
			// même erreur, la boucle s'arrête
			if p.diag.IsEnabled() {
				p.diag.WriteLine(fmt.Sprintf("!!! Channel failed, closing the worker: %v", err))
			}
			log.Printf("Channel failed, shutting down: %v", err)
			return err
		}

		p.handleRequest(ctx, req)
	}
}

// handleRequest livre d'abord l'éventuelle erreur de bootstrap, puis
// dispatche par kind. Un kind inconnu est une rupture de contrat avec le
// host: le processus avorte plutôt que d'ignorer silencieusement.
func (p *Process) handleRequest(ctx context.Context, req *models.Request) {
	if p.pendingBootstrapError != "" {
		p.sendResponse(&models.InitializationFailedResponse{
			Kind:    models.EventInitializationFailed,
			Message: p.pendingBootstrapError,
		})
		p.pendingBootstrapError = ""
	}

	switch req.Kind {
	case models.KindDiscover:
		var discover models.DiscoverRequest
		if err := json.Unmarshal(req.Raw, &discover); err != nil {
			log.Printf("Skipping malformed discover request: %v", err)
			return
		}
		p.handler.InstallTypings(&discover)

	case models.KindCloseProject:
		var closeProject models.CloseProjectRequest
		if err := json.Unmarshal(req.Raw, &closeProject); err != nil {
			log.Printf("Skipping malformed closeProject request: %v", err)
			return
		}
		p.handler.CloseProject(&closeProject)

	case models.KindTypesRegistry:
		p.sendResponse(&models.TypesRegistryResponse{
			Kind:          models.EventTypesRegistry,
			TypesRegistry: p.snapshot.ToRegistryMap(),
		})

	case models.KindInstallPackage:
		var install models.InstallPackageRequest
		if err := json.Unmarshal(req.Raw, &install); err != nil {
			log.Printf("Skipping malformed installPackage request: %v", err)
			return
		}
		p.handleInstallPackage(ctx, &install)

	default:
		p.fatalf("Unexpected request kind %q: protocol mismatch with the host", req.Kind)
	}
}

// handleInstallPackage installe un paquet unique dans le répertoire du
// projet le plus proche du fichier source, à défaut dans la racine fournie
// par le host, et répond toujours exactement une fois
func (p *Process) handleInstallPackage(ctx context.Context, req *models.InstallPackageRequest) {
	cwd, ok := project.FindProjectRoot(req.FileName)
	if !ok {
		cwd = req.ProjectRootPath
	}
	if cwd == "" {
		// Sans racine résolue ni hint, npm s'exécuterait dans le répertoire
		// courant du worker: refusé
		if p.diag.IsEnabled() {
			p.diag.WriteLine(fmt.Sprintf("No project root found for '%s' and no root hint provided", req.FileName))
		}
		p.sendResponse(&models.PackageInstalledResponse{
			Kind:    models.EventPackageInstalled,
			Success: false,
			Message: fmt.Sprintf("There was an error installing %s.", req.PackageName),
		})
		return
	}

	p.requestSeq++
	p.npm.Install(ctx, p.requestSeq, []string{req.PackageName}, cwd, func(success bool) {
		var message string
		if success {
			message = fmt.Sprintf("Package %s installed.", req.PackageName)
		} else {
			message = fmt.Sprintf("There was an error installing %s.", req.PackageName)
		}
		p.sendResponse(&models.PackageInstalledResponse{
			Kind:    models.EventPackageInstalled,
			Success: success,
			Message: message,
		})
	})
}

func (p *Process) sendResponse(response any) {
	if err := p.channel.Send(response); err != nil {
		log.Printf("Failed to send response: %v", err)
	}
}
