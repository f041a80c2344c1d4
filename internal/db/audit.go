package db

import (
	"context"
	"encoding/json"
	"fmt"

	"crowd-safety-service/internal/models"
)

// RecordAlert inserts a new alert audit row.
func (d *DB) RecordAlert(ctx context.Context, alert models.AlertEvent) error {
	metadata, err := json.Marshal(alert.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal alert metadata: %w", err)
	}

	query := `
    INSERT INTO alert_audit (
        id, created_at, area_id, area_name, severity, density_value, threshold, type, metadata
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7, $8, $9
    )`

	_, err = d.Pool.Exec(ctx, query,
		alert.ID,
		alert.Timestamp,
		alert.AreaID,
		alert.AreaName,
		alert.Severity.String(),
		alert.DensityValue,
		alert.Threshold,
		alert.Type,
		metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert audit row: %w", err)
	}
	return nil
}

// RecordAcknowledgment updates the audit row for an acknowledged alert.
func (d *DB) RecordAcknowledgment(ctx context.Context, alertID string, ack models.AuthorityAcknowledgment) error {
	query := `
    UPDATE alert_audit
    SET acknowledged_by = $2, acknowledged_by_name = $3, acknowledged_at = $4, ack_notes = $5
    WHERE id = $1`

	_, err := d.Pool.Exec(ctx, query,
		alertID,
		ack.AuthorityID,
		ack.AuthorityName,
		ack.AcknowledgedAt,
		ack.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert audit row: %w", err)
	}
	return nil
}

// RecordEmergencyTransition appends one emergency-mode transition. Each
// call is a new row, so the table is the transition history the in-memory
// state deliberately does not keep.
func (d *DB) RecordEmergencyTransition(ctx context.Context, state models.EmergencyMode) error {
	query := `
    INSERT INTO emergency_audit (
        active, trigger, area_id, activated_by, activated_at, deactivated_by, deactivated_at
    ) VALUES (
        $1, $2, $3, $4, $5, $6, $7
    )`

	_, err := d.Pool.Exec(ctx, query,
		state.Active,
		string(state.Trigger),
		state.AreaID,
		state.ActivatedBy,
		state.ActivatedAt,
		state.DeactivatedBy,
		state.DeactivatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert emergency audit row: %w", err)
	}
	return nil
}
