// Package repository implements the store.Store contract on Postgres.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"pvcommunity/internal/community"
	"pvcommunity/internal/models"
)

// PostgresStore persists installations and monthly readings in two tables,
// keyed by the anonymized hash. It satisfies store.Store.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore returns the repository.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const installationColumns = `
	anlage_hash, region, kwp, ausrichtung, neigung_grad, speicher_kwh,
	installation_jahr, hat_waermepumpe, hat_eauto, hat_wallbox,
	hat_balkonkraftwerk, hat_sonstiges, wallbox_kw, bkw_wp,
	sonstiges_bezeichnung, erstellt_am, aktualisiert_am, update_count`

const readingColumns = `
	jahr, monat, ertrag_kwh, einspeisung_kwh, netzbezug_kwh,
	autarkie_prozent, eigenverbrauch_prozent,
	speicher_ladung_kwh, speicher_entladung_kwh, speicher_ladung_netz_kwh,
	wp_stromverbrauch_kwh, wp_heizwaerme_kwh, wp_warmwasser_kwh,
	eauto_ladung_gesamt_kwh, eauto_ladung_pv_kwh, eauto_ladung_extern_kwh,
	eauto_km, eauto_v2h_kwh,
	wallbox_ladung_kwh, wallbox_ladung_pv_kwh, wallbox_ladevorgaenge,
	bkw_erzeugung_kwh, bkw_eigenverbrauch_kwh, bkw_speicher_ladung_kwh,
	bkw_speicher_entladung_kwh, sonstiges_verbrauch_kwh`

// UpsertInstallation creates or updates the attribute record by hash.
func (r *PostgresStore) UpsertInstallation(ctx context.Context, inst *models.Installation) (bool, error) {
	const query = `
		INSERT INTO anlagen (
			anlage_hash, region, kwp, ausrichtung, neigung_grad, speicher_kwh,
			installation_jahr, hat_waermepumpe, hat_eauto, hat_wallbox,
			hat_balkonkraftwerk, hat_sonstiges, wallbox_kw, bkw_wp,
			sonstiges_bezeichnung, erstellt_am, aktualisiert_am, update_count
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW(), 0)
		ON CONFLICT (anlage_hash) DO UPDATE SET
			speicher_kwh = EXCLUDED.speicher_kwh,
			hat_waermepumpe = EXCLUDED.hat_waermepumpe,
			hat_eauto = EXCLUDED.hat_eauto,
			hat_wallbox = EXCLUDED.hat_wallbox,
			hat_balkonkraftwerk = EXCLUDED.hat_balkonkraftwerk,
			hat_sonstiges = EXCLUDED.hat_sonstiges,
			wallbox_kw = EXCLUDED.wallbox_kw,
			bkw_wp = EXCLUDED.bkw_wp,
			sonstiges_bezeichnung = EXCLUDED.sonstiges_bezeichnung,
			aktualisiert_am = NOW(),
			update_count = anlagen.update_count + 1
		RETURNING (xmax = 0), erstellt_am, aktualisiert_am, update_count
	`
	var created bool
	err := r.db.QueryRowContext(ctx, query,
		inst.Hash,
		inst.Region,
		inst.KWp,
		inst.Ausrichtung,
		inst.NeigungGrad,
		inst.SpeicherKWh,
		inst.InstallationJahr,
		inst.HatWaermepumpe,
		inst.HatEAuto,
		inst.HatWallbox,
		inst.HatBalkonkraftwerk,
		inst.HatSonstiges,
		inst.WallboxKW,
		inst.BKWWp,
		inst.SonstigesBezeichnung,
	).Scan(&created, &inst.ErstelltAm, &inst.AktualisiertAm, &inst.UpdateCount)
	if err != nil {
		return false, fmt.Errorf("repository: upsert installation: %w", err)
	}
	return created, nil
}

// AppendReadings upserts readings by (hash, jahr, monat); last write wins.
func (r *PostgresStore) AppendReadings(ctx context.Context, hash string, readings []models.MonthlyReading) error {
	if len(readings) == 0 {
		return nil
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM anlagen WHERE anlage_hash = $1)`, hash,
	).Scan(&exists); err != nil {
		return fmt.Errorf("repository: check installation: %w", err)
	}
	if !exists {
		return community.ErrNotFound
	}

	const query = `
		INSERT INTO monatswerte (
			anlage_hash, jahr, monat, ertrag_kwh, einspeisung_kwh, netzbezug_kwh,
			autarkie_prozent, eigenverbrauch_prozent,
			speicher_ladung_kwh, speicher_entladung_kwh, speicher_ladung_netz_kwh,
			wp_stromverbrauch_kwh, wp_heizwaerme_kwh, wp_warmwasser_kwh,
			eauto_ladung_gesamt_kwh, eauto_ladung_pv_kwh, eauto_ladung_extern_kwh,
			eauto_km, eauto_v2h_kwh,
			wallbox_ladung_kwh, wallbox_ladung_pv_kwh, wallbox_ladevorgaenge,
			bkw_erzeugung_kwh, bkw_eigenverbrauch_kwh, bkw_speicher_ladung_kwh,
			bkw_speicher_entladung_kwh, sonstiges_verbrauch_kwh
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
		ON CONFLICT (anlage_hash, jahr, monat) DO UPDATE SET
			ertrag_kwh = EXCLUDED.ertrag_kwh,
			einspeisung_kwh = EXCLUDED.einspeisung_kwh,
			netzbezug_kwh = EXCLUDED.netzbezug_kwh,
			autarkie_prozent = EXCLUDED.autarkie_prozent,
			eigenverbrauch_prozent = EXCLUDED.eigenverbrauch_prozent,
			speicher_ladung_kwh = EXCLUDED.speicher_ladung_kwh,
			speicher_entladung_kwh = EXCLUDED.speicher_entladung_kwh,
			speicher_ladung_netz_kwh = EXCLUDED.speicher_ladung_netz_kwh,
			wp_stromverbrauch_kwh = EXCLUDED.wp_stromverbrauch_kwh,
			wp_heizwaerme_kwh = EXCLUDED.wp_heizwaerme_kwh,
			wp_warmwasser_kwh = EXCLUDED.wp_warmwasser_kwh,
			eauto_ladung_gesamt_kwh = EXCLUDED.eauto_ladung_gesamt_kwh,
			eauto_ladung_pv_kwh = EXCLUDED.eauto_ladung_pv_kwh,
			eauto_ladung_extern_kwh = EXCLUDED.eauto_ladung_extern_kwh,
			eauto_km = EXCLUDED.eauto_km,
			eauto_v2h_kwh = EXCLUDED.eauto_v2h_kwh,
			wallbox_ladung_kwh = EXCLUDED.wallbox_ladung_kwh,
			wallbox_ladung_pv_kwh = EXCLUDED.wallbox_ladung_pv_kwh,
			wallbox_ladevorgaenge = EXCLUDED.wallbox_ladevorgaenge,
			bkw_erzeugung_kwh = EXCLUDED.bkw_erzeugung_kwh,
			bkw_eigenverbrauch_kwh = EXCLUDED.bkw_eigenverbrauch_kwh,
			bkw_speicher_ladung_kwh = EXCLUDED.bkw_speicher_ladung_kwh,
			bkw_speicher_entladung_kwh = EXCLUDED.bkw_speicher_entladung_kwh,
			sonstiges_verbrauch_kwh = EXCLUDED.sonstiges_verbrauch_kwh
	`

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin append: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("repository: prepare append: %w", err)
	}
	defer stmt.Close()

	for _, m := range readings {
		if _, err := stmt.ExecContext(ctx,
			hash, m.Jahr, m.Monat, m.ErtragKWh, m.EinspeisungKWh, m.NetzbezugKWh,
			m.AutarkieProzent, m.EigenverbrauchProzent,
			m.SpeicherLadungKWh, m.SpeicherEntladungKWh, m.SpeicherLadungNetzKWh,
			m.WPStromverbrauchKWh, m.WPHeizwaermeKWh, m.WPWarmwasserKWh,
			m.EAutoLadungGesamtKWh, m.EAutoLadungPVKWh, m.EAutoLadungExternKWh,
			m.EAutoKm, m.EAutoV2HKWh,
			m.WallboxLadungKWh, m.WallboxLadungPVKWh, m.WallboxLadevorgaenge,
			m.BKWErzeugungKWh, m.BKWEigenverbrauchKWh, m.BKWSpeicherLadungKWh,
			m.BKWSpeicherEntladungKWh, m.SonstigesVerbrauchKWh,
		); err != nil {
			return fmt.Errorf("repository: upsert reading %d-%02d: %w", m.Jahr, m.Monat, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit append: %w", err)
	}
	return nil
}

// GetInstallation loads one record with readings, newest first.
func (r *PostgresStore) GetInstallation(ctx context.Context, hash string) (*models.Installation, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("repository: begin get: %w", err)
	}
	defer tx.Rollback()

	inst, err := scanInstallation(tx.QueryRowContext(ctx,
		`SELECT `+installationColumns+` FROM anlagen WHERE anlage_hash = $1`, hash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, community.ErrNotFound
		}
		return nil, fmt.Errorf("repository: get installation: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT `+readingColumns+` FROM monatswerte WHERE anlage_hash = $1 ORDER BY jahr DESC, monat DESC`, hash)
	if err != nil {
		return nil, fmt.Errorf("repository: get readings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.MonthlyReading
		if err := scanReading(rows, &m); err != nil {
			return nil, fmt.Errorf("repository: scan reading: %w", err)
		}
		inst.Monatswerte = append(inst.Monatswerte, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: read readings: %w", err)
	}
	return inst, nil
}

// DeleteInstallation removes the record and all readings.
func (r *PostgresStore) DeleteInstallation(ctx context.Context, hash string) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("repository: begin delete: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM monatswerte WHERE anlage_hash = $1`, hash)
	if err != nil {
		return 0, fmt.Errorf("repository: delete readings: %w", err)
	}
	months, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository: delete readings affected: %w", err)
	}

	result, err = tx.ExecContext(ctx, `DELETE FROM anlagen WHERE anlage_hash = $1`, hash)
	if err != nil {
		return 0, fmt.Errorf("repository: delete installation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("repository: delete installation affected: %w", err)
	}
	if affected == 0 {
		return 0, community.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("repository: commit delete: %w", err)
	}
	return int(months), nil
}

// Iterate streams all installations through fn inside a repeatable-read
// snapshot, one record at a time. A single left-joined scan keeps memory
// bounded regardless of population size.
func (r *PostgresStore) Iterate(ctx context.Context, fn func(*models.Installation) error) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return fmt.Errorf("repository: begin iterate: %w", err)
	}
	defer tx.Rollback()

	const query = `
		SELECT
			a.anlage_hash, a.region, a.kwp, a.ausrichtung, a.neigung_grad, a.speicher_kwh,
			a.installation_jahr, a.hat_waermepumpe, a.hat_eauto, a.hat_wallbox,
			a.hat_balkonkraftwerk, a.hat_sonstiges, a.wallbox_kw, a.bkw_wp,
			a.sonstiges_bezeichnung, a.erstellt_am, a.aktualisiert_am, a.update_count,
			m.jahr, m.monat, m.ertrag_kwh, m.einspeisung_kwh, m.netzbezug_kwh,
			m.autarkie_prozent, m.eigenverbrauch_prozent,
			m.speicher_ladung_kwh, m.speicher_entladung_kwh, m.speicher_ladung_netz_kwh,
			m.wp_stromverbrauch_kwh, m.wp_heizwaerme_kwh, m.wp_warmwasser_kwh,
			m.eauto_ladung_gesamt_kwh, m.eauto_ladung_pv_kwh, m.eauto_ladung_extern_kwh,
			m.eauto_km, m.eauto_v2h_kwh,
			m.wallbox_ladung_kwh, m.wallbox_ladung_pv_kwh, m.wallbox_ladevorgaenge,
			m.bkw_erzeugung_kwh, m.bkw_eigenverbrauch_kwh, m.bkw_speicher_ladung_kwh,
			m.bkw_speicher_entladung_kwh, m.sonstiges_verbrauch_kwh
		FROM anlagen a
		LEFT JOIN monatswerte m ON m.anlage_hash = a.anlage_hash
		ORDER BY a.anlage_hash, m.jahr DESC, m.monat DESC
	`
	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("repository: iterate query: %w", err)
	}
	defer rows.Close()

	var current *models.Installation
	for rows.Next() {
		var inst models.Installation
		var jahr, monat *int
		var ertrag *float64
		m := models.MonthlyReading{}
		if err := rows.Scan(
			&inst.Hash, &inst.Region, &inst.KWp, &inst.Ausrichtung, &inst.NeigungGrad, &inst.SpeicherKWh,
			&inst.InstallationJahr, &inst.HatWaermepumpe, &inst.HatEAuto, &inst.HatWallbox,
			&inst.HatBalkonkraftwerk, &inst.HatSonstiges, &inst.WallboxKW, &inst.BKWWp,
			&inst.SonstigesBezeichnung, &inst.ErstelltAm, &inst.AktualisiertAm, &inst.UpdateCount,
			&jahr, &monat, &ertrag, &m.EinspeisungKWh, &m.NetzbezugKWh,
			&m.AutarkieProzent, &m.EigenverbrauchProzent,
			&m.SpeicherLadungKWh, &m.SpeicherEntladungKWh, &m.SpeicherLadungNetzKWh,
			&m.WPStromverbrauchKWh, &m.WPHeizwaermeKWh, &m.WPWarmwasserKWh,
			&m.EAutoLadungGesamtKWh, &m.EAutoLadungPVKWh, &m.EAutoLadungExternKWh,
			&m.EAutoKm, &m.EAutoV2HKWh,
			&m.WallboxLadungKWh, &m.WallboxLadungPVKWh, &m.WallboxLadevorgaenge,
			&m.BKWErzeugungKWh, &m.BKWEigenverbrauchKWh, &m.BKWSpeicherLadungKWh,
			&m.BKWSpeicherEntladungKWh, &m.SonstigesVerbrauchKWh,
		); err != nil {
			return fmt.Errorf("repository: iterate scan: %w", err)
		}

		if current == nil || current.Hash != inst.Hash {
			if current != nil {
				if err := fn(current); err != nil {
					return err
				}
			}
			current = &inst
		}
		if jahr != nil && monat != nil && ertrag != nil {
			m.Jahr = *jahr
			m.Monat = *monat
			m.ErtragKWh = *ertrag
			current.Monatswerte = append(current.Monatswerte, m)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("repository: iterate rows: %w", err)
	}
	if current != nil {
		if err := fn(current); err != nil {
			return err
		}
	}
	return nil
}

// CountInstallations returns the installation count.
func (r *PostgresStore) CountInstallations(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM anlagen`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository: count installations: %w", err)
	}
	return n, nil
}

// CountReadings returns the total reading count.
func (r *PostgresStore) CountReadings(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM monatswerte`).Scan(&n); err != nil {
		return 0, fmt.Errorf("repository: count readings: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstallation(row rowScanner) (*models.Installation, error) {
	var inst models.Installation
	err := row.Scan(
		&inst.Hash, &inst.Region, &inst.KWp, &inst.Ausrichtung, &inst.NeigungGrad, &inst.SpeicherKWh,
		&inst.InstallationJahr, &inst.HatWaermepumpe, &inst.HatEAuto, &inst.HatWallbox,
		&inst.HatBalkonkraftwerk, &inst.HatSonstiges, &inst.WallboxKW, &inst.BKWWp,
		&inst.SonstigesBezeichnung, &inst.ErstelltAm, &inst.AktualisiertAm, &inst.UpdateCount,
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func scanReading(row rowScanner, m *models.MonthlyReading) error {
	return row.Scan(
		&m.Jahr, &m.Monat, &m.ErtragKWh, &m.EinspeisungKWh, &m.NetzbezugKWh,
		&m.AutarkieProzent, &m.EigenverbrauchProzent,
		&m.SpeicherLadungKWh, &m.SpeicherEntladungKWh, &m.SpeicherLadungNetzKWh,
		&m.WPStromverbrauchKWh, &m.WPHeizwaermeKWh, &m.WPWarmwasserKWh,
		&m.EAutoLadungGesamtKWh, &m.EAutoLadungPVKWh, &m.EAutoLadungExternKWh,
		&m.EAutoKm, &m.EAutoV2HKWh,
		&m.WallboxLadungKWh, &m.WallboxLadungPVKWh, &m.WallboxLadevorgaenge,
		&m.BKWErzeugungKWh, &m.BKWEigenverbrauchKWh, &m.BKWSpeicherLadungKWh,
		&m.BKWSpeicherEntladungKWh, &m.SonstigesVerbrauchKWh,
	)
}
