package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/allisson/delta/internal/client"
	"github.com/allisson/delta/internal/client/dto"
	"github.com/allisson/delta/internal/errors"
	secretsDomain "github.com/allisson/delta/internal/secrets/domain"
)

// SecretListOptions holds the filters of RunListSecrets.
type SecretListOptions struct {
	Lookup        string
	BaseSecretID  string
	CreatedBy     string
	RSAKeyOwnerID string
	Metadata      []string
	Page          int
	PageSize      int
}

// RunCreateSecret stores a base secret. A content of "-" is read from io.Reader.
func RunCreateSecret(
	ctx context.Context,
	apiClient client.APIClient,
	logger *slog.Logger,
	requestorID, content string,
	encryptionDetailPairs []string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	content, err := readContent(content, io.Reader)
	if err != nil {
		return err
	}
	details, err := parseKeyValues("encryption-detail", encryptionDetailPairs)
	if err != nil {
		return err
	}

	secret, err := apiClient.CreateSecret(ctx, requestorID, content, details)
	if err != nil {
		return fmt.Errorf("failed to create secret: %w", err)
	}

	writeSecret(secret, nil, format, io.Writer)

	logger.Info("secret created", slog.String("secret_id", secret.ID), slog.String("created_by", requestorID))
	return nil
}

// RunShareSecret stores a derived copy of baseSecretID re-encrypted for rsaKeyOwnerID.
func RunShareSecret(
	ctx context.Context,
	apiClient client.APIClient,
	logger *slog.Logger,
	requestorID, baseSecretID, rsaKeyOwnerID, content string,
	encryptionDetailPairs []string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	content, err := readContent(content, io.Reader)
	if err != nil {
		return err
	}
	details, err := parseKeyValues("encryption-detail", encryptionDetailPairs)
	if err != nil {
		return err
	}

	secret, err := apiClient.ShareSecret(ctx, requestorID, content, details, baseSecretID, rsaKeyOwnerID)
	if err != nil {
		return fmt.Errorf("failed to share secret: %w", err)
	}

	writeSecret(secret, nil, format, io.Writer)

	logger.Info("secret shared",
		slog.String("secret_id", secret.ID),
		slog.String("base_secret_id", baseSecretID),
		slog.String("rsa_key_owner_id", rsaKeyOwnerID),
	)
	return nil
}

// RunGetSecret prints a secret's descriptor and metadata without its content.
func RunGetSecret(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID, secretID string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	secret, err := apiClient.GetSecret(ctx, requestorID, secretID)
	if err != nil {
		return fmt.Errorf("failed to get secret: %w", err)
	}
	metadata, err := apiClient.GetSecretMetadata(ctx, requestorID, secretID)
	if err != nil {
		return fmt.Errorf("failed to get secret metadata: %w", err)
	}

	writeSecret(secret, metadata, format, io.Writer)
	return nil
}

// RunGetSecretMetadata prints a secret's metadata and version.
func RunGetSecretMetadata(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID, secretID string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	metadata, err := apiClient.GetSecretMetadata(ctx, requestorID, secretID)
	if err != nil {
		return fmt.Errorf("failed to get secret metadata: %w", err)
	}

	writeSecretMetadata(secretID, metadata, format, io.Writer)
	return nil
}

// RunGetSecretContent writes the raw secret content. The format only affects json,
// which wraps the content in an object.
func RunGetSecretContent(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID, secretID string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	content, err := apiClient.GetSecretContent(ctx, requestorID, secretID)
	if err != nil {
		return fmt.Errorf("failed to get secret content: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]string{"id": secretID, "content": content}, io.Writer)
		return nil
	}
	_, _ = fmt.Fprintln(io.Writer, content)
	return nil
}

// RunUpdateSecretMetadata replaces a secret's metadata if version is still current.
func RunUpdateSecretMetadata(
	ctx context.Context,
	apiClient client.APIClient,
	logger *slog.Logger,
	requestorID, secretID string,
	metadataPairs []string,
	version int,
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

	if err := apiClient.UpdateSecretMetadata(ctx, requestorID, secretID, metadata, version); err != nil {
		return fmt.Errorf("failed to update secret metadata: %w", err)
	}

	current, err := apiClient.GetSecretMetadata(ctx, requestorID, secretID)
	if err != nil {
		return fmt.Errorf("failed to reload secret metadata: %w", err)
	}

	writeSecretMetadata(secretID, current, format, io.Writer)

	logger.Info("secret metadata updated", slog.String("secret_id", secretID), slog.Int("version", current.Version))
	return nil
}

// RunDeleteSecret removes a secret created by the requestor.
func RunDeleteSecret(
	ctx context.Context,
	apiClient client.APIClient,
	logger *slog.Logger,
	requestorID, secretID string,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}

	if err := apiClient.DeleteSecret(ctx, requestorID, secretID); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}

	if format == "json" {
		outputJSON(map[string]any{"id": secretID, "deleted": true}, io.Writer)
	} else {
		_, _ = fmt.Fprintf(io.Writer, "Secret %s deleted\n", secretID)
	}

	logger.Info("secret deleted", slog.String("secret_id", secretID))
	return nil
}

// RunListSecrets lists secrets visible to the requestor.
func RunListSecrets(
	ctx context.Context,
	apiClient client.APIClient,
	requestorID string,
	opts SecretListOptions,
	format string,
	io IOTuple,
) error {
	if err := checkFormat(format); err != nil {
		return err
	}
	lookup, ok := secretsDomain.ParseLookupType(opts.Lookup)
	if !ok {
		return errors.Wrapf(
			errors.ErrInvalidInput,
			"invalid lookup: %s (valid options: any, base, derived)",
			opts.Lookup,
		)
	}
	metadata, err := parseKeyValues("metadata", opts.Metadata)
	if err != nil {
		return err
	}

	secrets, err := apiClient.GetSecrets(ctx, requestorID, &secretsDomain.SecretQuery{
		BaseSecretID:  optional(opts.BaseSecretID),
		CreatedBy:     optional(opts.CreatedBy),
		RSAKeyOwnerID: optional(opts.RSAKeyOwnerID),
		Metadata:      metadata,
		LookupType:    lookup,
		Page:          optionalInt(opts.Page),
		PageSize:      optionalInt(opts.PageSize),
	})
	if err != nil {
		return fmt.Errorf("failed to list secrets: %w", err)
	}

	if format == "json" {
		out := make([]dto.SecretResponse, 0, len(secrets))
		for _, secret := range secrets {
			out = append(out, dto.MapSecretToResponse(secret))
		}
		outputJSON(out, io.Writer)
		return nil
	}

	_, _ = fmt.Fprintf(io.Writer, "Found %d secrets\n", len(secrets))
	for _, secret := range secrets {
		kind := "base"
		if secret.IsDerived() {
			kind = "derived of " + secret.BaseSecretID
		}
		_, _ = fmt.Fprintf(io.Writer, "%s\towner=%s\t%s\n", secret.ID, secret.RSAKeyOwnerID, kind)
	}
	return nil
}

func writeSecret(secret *secretsDomain.Secret, metadata *secretsDomain.SecretMetadata, format string, w io.Writer) {
	if format == "json" {
		out := struct {
			dto.SecretResponse
			Metadata map[string]string `json:"metadata,omitempty"`
			Version  int               `json:"version,omitempty"`
		}{SecretResponse: dto.MapSecretToResponse(secret)}
		if metadata != nil {
			out.Metadata = metadata.Entries
			out.Version = metadata.Version
		}
		outputJSON(out, w)
		return
	}

	_, _ = fmt.Fprintf(w, "Secret ID: %s\n", secret.ID)
	if secret.IsDerived() {
		_, _ = fmt.Fprintf(w, "Base Secret ID: %s\n", secret.BaseSecretID)
	}
	_, _ = fmt.Fprintf(w, "Created By: %s\n", secret.CreatedBy)
	_, _ = fmt.Fprintf(w, "RSA Key Owner: %s\n", secret.RSAKeyOwnerID)
	if !secret.Created.IsZero() {
		_, _ = fmt.Fprintf(w, "Created: %s\n", secret.Created.Format("2006-01-02 15:04:05"))
	}
	for _, key := range slices.Sorted(maps.Keys(secret.EncryptionDetails)) {
		_, _ = fmt.Fprintf(w, "Encryption Detail: %s=%s\n", key, secret.EncryptionDetails[key])
	}
	if metadata != nil {
		_, _ = fmt.Fprintf(w, "Metadata Version: %d\n", metadata.Version)
		writeMetadata(w, metadata.Entries)
	}
}

func writeSecretMetadata(secretID string, metadata *secretsDomain.SecretMetadata, format string, w io.Writer) {
	if format == "json" {
		outputJSON(map[string]any{
			"id":       secretID,
			"metadata": metadata.Entries,
			"version":  metadata.Version,
		}, w)
		return
	}

	_, _ = fmt.Fprintf(w, "Secret ID: %s\n", secretID)
	_, _ = fmt.Fprintf(w, "Version: %d\n", metadata.Version)
	writeMetadata(w, metadata.Entries)
}
