package models

import (
	"encoding/json"
	"fmt"
)

// RequestKind discrimine les requêtes entrantes du host.
// L'ensemble est fermé: toute autre valeur est une rupture de protocole.
type RequestKind string

const (
	KindDiscover       RequestKind = "discover"
	KindCloseProject   RequestKind = "closeProject"
	KindTypesRegistry  RequestKind = "typesRegistry"
	KindInstallPackage RequestKind = "installPackage"
)

// Kinds des événements sortants vers le host.
const (
	EventInitializationFailed = "event::initializationFailed"
	EventTypesRegistry        = "event::typesRegistry"
	EventPackageInstalled     = "event::packageInstalled"
	EventTypingsInstalled     = "event::typesInstalled"
)

// Request est l'enveloppe d'un message entrant. Le corps brut est conservé
// pour décoder la charge utile spécifique après le dispatch par kind.
type Request struct {
	Kind RequestKind
	Raw  json.RawMessage
}

// DecodeRequest décode une ligne JSON du canal en enveloppe Request
func DecodeRequest(line []byte) (*Request, error) {
	var envelope struct {
		Kind RequestKind `json:"kind"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode request envelope: %w", err)
	}
	if envelope.Kind == "" {
		return nil, fmt.Errorf("request has no kind discriminator")
	}
	return &Request{Kind: envelope.Kind, Raw: json.RawMessage(line)}, nil
}

// DiscoverRequest porte une demande de découverte de typings,
// traitée par le collaborateur de découverte réutilisé.
type DiscoverRequest struct {
	Kind            RequestKind `json:"kind"`
	ProjectName     string      `json:"projectName"`
	FileNames       []string    `json:"fileNames,omitempty"`
	ProjectRootPath string      `json:"projectRootPath,omitempty"`
	TypingOptions   struct {
		EnableAutoDiscovery bool     `json:"enableAutoDiscovery,omitempty"`
		Include             []string `json:"include,omitempty"`
		Exclude             []string `json:"exclude,omitempty"`
	} `json:"typingOptions"`
}

// CloseProjectRequest notifie la fermeture d'un projet côté host
type CloseProjectRequest struct {
	Kind        RequestKind `json:"kind"`
	ProjectName string      `json:"projectName"`
}

// TypesRegistryRequest interroge le snapshot du registre (sans charge utile)
type TypesRegistryRequest struct {
	Kind RequestKind `json:"kind"`
}

// InstallPackageRequest demande l'installation d'un paquet unique
type InstallPackageRequest struct {
	Kind            RequestKind `json:"kind"`
	FileName        string      `json:"fileName"`
	PackageName     string      `json:"packageName"`
	ProjectRootPath string      `json:"projectRootPath,omitempty"`
}

// InitializationFailedResponse est l'événement différé émis si la mise à jour
// du paquet registre a échoué pendant le bootstrap
type InitializationFailedResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// TypesRegistryResponse porte le snapshot du registre vers le host.
// Les valeurs sont des marqueurs opaques (null sur le fil).
type TypesRegistryResponse struct {
	Kind          string         `json:"kind"`
	TypesRegistry map[string]any `json:"typesRegistry"`
}

// PackageInstalledResponse est la réponse à une requête installPackage
type PackageInstalledResponse struct {
	Kind    string `json:"kind"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// TypingsInstalledResponse clôt une découverte de typings: liste des paquets
// effectivement installés pendant le traitement de la requête
type TypingsInstalledResponse struct {
	Kind        string   `json:"kind"`
	ProjectName string   `json:"projectName"`
	Success     bool     `json:"success"`
	Typings     []string `json:"typings"`
}
