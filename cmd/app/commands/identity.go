package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/delta/internal/client"
	"github.com/allisson/delta/internal/client/dto"
	"github.com/allisson/delta/internal/delta"
	identityDomain "github.com/allisson/delta/internal/identity/domain"
)

// RunRegisterIdentity generates key pairs for a new identity, registers the public halves
// and stores the private halves in the local key store.
func RunRegisterIdentity(
	ctx context.Context,
	deltaClient *delta.Client,
	logger *slog.Logger,
	externalID string,
	metadataPairs []string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	metadata, err := parseKeyValues("metadata", metadataPairs)
	if err != nil {
		return err
	}

	logger.Info("registering identity")

	identity, err := deltaClient.CreateIdentity(ctx, optional(externalID), metadata)
	if err != nil {
		return fmt.Errorf("failed to register identity: %w", err)
	}

	writeIdentity(&identity.Identity, format, io.Writer)

	logger.Info("identity registered", slog.String("identity_id", identity.ID))
	return nil
}

// RunGetIdentity prints an identity as seen by requestorID. An empty identityID
// means the requestor itself.
func RunGetIdentity(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID, identityID string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if identityID == "" {
		identityID = requestorID
	}

	identity, err := apiClient.GetIdentity(ctx, requestorID, identityID)
	if err != nil {
		return fmt.Errorf("failed to get identity: %w", err)
	}

	writeIdentity(identity, format, io.Writer)
	return nil
}

// RunFindIdentities lists identities whose metadata contains every given entry.
func RunFindIdentities(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID string,
	metadataPairs []string,
	page, pageSize int,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	metadata, err := parseKeyValues("metadata", metadataPairs)
	if err != nil {
		return err
	}

	identities, err := apiClient.GetIdentitiesByMetadata(ctx, requestorID, &identityDomain.IdentityQuery{
		Metadata: metadata,
		Page:     optionalInt(page),
		PageSize: optionalInt(pageSize),
	})
	if err != nil {
		return fmt.Errorf("failed to find identities: %w", err)
	}

	if format == "json" {
		out := make([]dto.IdentityResponse, 0, len(identities))
		for _, identity := range identities {
			out = append(out, dto.MapIdentityToResponse(identity))
		}
		outputJSON(out, io.Writer)
		return nil
	}

	_, _ = fmt.Fprintf(io.Writer, "Found %d identities\n", len(identities))
	for _, identity := range identities {
		_, _ = fmt.Fprintf(io.Writer, "%s\tversion=%d\n", identity.ID, identity.Version)
	}
	return nil
}

// RunUpdateIdentityMetadata replaces the requestor's metadata if version is still current.
func RunUpdateIdentityMetadata(
	ctx context.Context,
	apiClient client.APIClient,
	logger *slog.Logger,
	requestorID, identityID string,
	metadataPairs []string,
	version int,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	if identityID == "" {
		identityID = requestorID
	}
	metadata, err := parseKeyValues("metadata", metadataPairs)
	if err != nil {
		return err
	}

	if err := apiClient.UpdateIdentityMetadata(ctx, requestorID, identityID, metadata, version); err != nil {
		return fmt.Errorf("failed to update identity metadata: %w", err)
	}

	identity, err := apiClient.GetIdentity(ctx, requestorID, identityID)
	if err != nil {
		return fmt.Errorf("failed to reload identity: %w", err)
	}

	writeIdentity(identity, format, io.Writer)

	logger.Info("identity metadata updated",
		slog.String("identity_id", identityID),
		slog.Int("version", identity.Version),
	)
	return nil
}

func writeIdentity(identity *identityDomain.Identity, format string, w io.Writer) {
	if format == "json" {
		outputJSON(dto.MapIdentityToResponse(identity), w)
		return
	}

	_, _ = fmt.Fprintf(w, "Identity ID: %s\n", identity.ID)
	if identity.ExternalID != "" {
		_, _ = fmt.Fprintf(w, "External ID: %s\n", identity.ExternalID)
	}
	_, _ = fmt.Fprintf(w, "Version: %d\n", identity.Version)
	writeMetadata(w, identity.Metadata)
}
