// internal/npm/installer.go
package npm

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"typings-worker/internal/logging"
	"typings-worker/pkg/models"
)

// Installer invoque npm de manière synchrone pour installer des paquets.
// Une invocation occupe entièrement l'appelant: aucune installation ne se
// recouvre, l'exclusion mutuelle sur les répertoires cibles est obtenue
// par construction.
type Installer struct {
	npmPath   string
	userAgent string
	diag      *logging.Log
	tracer    trace.Tracer

	// Compteurs pour le endpoint de statut - atomic pour éviter les locks
	total        int64
	success      int64
	failed       int64
	lastDuration int64
}

// NewInstaller crée un Installer pour l'emplacement npm donné (forme citée
// acceptée) et la version de l'outil rapportée dans le user-agent
func NewInstaller(npmLocation, version string, diag *logging.Log) *Installer {
	return &Installer{
		npmPath:   Unquote(npmLocation),
		userAgent: fmt.Sprintf("typings-worker/%s", version),
		diag:      diag,
		tracer:    otel.Tracer("typings-worker/npm"),
	}
}

// installArgs construit les arguments d'une installation: scripts
// post-install supprimés, dépendances de développement, user-agent identifiant
// l'outil. Un paquet unique passe par le même chemin que plusieurs.
func (i *Installer) installArgs(packages []string) []string {
	args := []string{"install", "--ignore-scripts"}
	args = append(args, packages...)
	args = append(args, "--save-dev", fmt.Sprintf("--user-agent=%s", i.userAgent))
	return args
}

// Install installe les paquets nommés dans workingDir et invoque onComplete
// avec le succès de la commande, exactement une fois, de manière synchrone,
// avant de retourner. Aucun échec de la commande ne remonte à l'appelant.
func (i *Installer) Install(ctx context.Context, requestID int, packages []string, workingDir string, onComplete func(success bool)) {
	_, span := i.tracer.Start(ctx, "Installer.Install")
	defer span.End()

	operationID := uuid.New().String()

	if i.diag.IsEnabled() {
		i.diag.WriteLine(fmt.Sprintf("#%d installing packages %v (operation %s)", requestID, packages, operationID))
	}

	result := i.run(packages, workingDir)
	result.OperationID = operationID

	atomic.AddInt64(&i.total, 1)
	atomic.StoreInt64(&i.lastDuration, int64(result.Duration))
	if result.Success {
		atomic.AddInt64(&i.success, 1)
	} else {
		atomic.AddInt64(&i.failed, 1)
		span.RecordError(fmt.Errorf("npm install exited with code %d", result.ExitCode))
	}

	if i.diag.IsEnabled() {
		i.diag.WriteLine(fmt.Sprintf("npm install #%d took: %v", requestID, result.Duration))
		i.diag.WriteLine(fmt.Sprintf("npm install #%d stdout: %s", requestID, result.Stdout))
		i.diag.WriteLine(fmt.Sprintf("npm install #%d stderr: %s", requestID, result.Stderr))
	}

	onComplete(result.Success)
}

// run exécute une invocation npm et absorbe tout échec dans le résultat
func (i *Installer) run(packages []string, workingDir string) *models.InstallResult {
	startTime := time.Now()
	result := &models.InstallResult{
		Packages: packages,
	}

	// Pas d'annulation ni de timeout: une installation démarrée court
	// jusqu'à la fin naturelle de la commande
	cmd := exec.Command(i.npmPath, i.installArgs(packages)...)
	cmd.Dir = workingDir
	cmd.Env = buildInstallEnvironment()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.Bytes()
	result.Stderr = stderr.Bytes()

	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitError.ExitCode()
		} else {
			result.ExitCode = 1
		}
		log.Printf("npm install of %v failed (exit %d): %v", packages, result.ExitCode, err)
		return result
	}

	result.ExitCode = 0
	result.Success = true
	return result
}

// UpdateRegistryPackage installe ou met à jour le paquet de métadonnées du
// registre dans le répertoire de cache, scripts ignorés, sortie ignorée.
// L'erreur est retournée à l'appelant: le bootstrap la capture sans la
// laisser remonter plus loin.
func (i *Installer) UpdateRegistryPackage(cacheDir, registryPackage string) error {
	cmd := exec.Command(i.npmPath, "install", "--ignore-scripts", registryPackage+"@latest")
	cmd.Dir = cacheDir
	cmd.Env = buildInstallEnvironment()

	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to update %s package: %v: %s", registryPackage, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// Stats retourne les compteurs cumulés des invocations
func (i *Installer) Stats() models.InstallStats {
	return models.InstallStats{
		Total:        atomic.LoadInt64(&i.total),
		Success:      atomic.LoadInt64(&i.success),
		Failed:       atomic.LoadInt64(&i.failed),
		LastDuration: time.Duration(atomic.LoadInt64(&i.lastDuration)),
	}
}

// buildInstallEnvironment construit l'environnement des invocations npm:
// pas de prompts interactifs ni de bruit de sortie superflu
func buildInstallEnvironment() []string {
	env := os.Environ()

	return append(env,
		"NPM_CONFIG_AUDIT=false",
		"NPM_CONFIG_FUND=false",
		"NPM_CONFIG_UPDATE_NOTIFIER=false",
		"NPM_CONFIG_PROGRESS=false",
	)
}
