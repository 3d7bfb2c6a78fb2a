package registry

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DBTX is the subset of pgx used by the postgres provider.
// Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// Keys selects the uuid column instead of the name column as code for the
// reference tables that have both.
type Keys struct {
	DatasetsByUUID              bool
	OrganismsByUUID             bool
	AcquisitionFrameworksByUUID bool
	UsersByUUID                 bool
}

// Postgres loads mappings from a GeoNature (and TaxHub) database.
type Postgres struct {
	db   DBTX
	keys Keys
}

var _ Provider = (*Postgres)(nil)

// NewPostgres returns a provider reading through db.
func NewPostgres(db DBTX, keys Keys) *Postgres {
	return &Postgres{db: db, keys: keys}
}

func pick(byUUID bool, uuidCol, nameCol string) string {
	if byUUID {
		return uuidCol
	}
	return nameCol
}

// singleQuery returns the SELECT yielding (code, id) rows for d.
func (p *Postgres) singleQuery(d Domain) (string, error) {
	switch d {
	case Datasets:
		col := pick(p.keys.DatasetsByUUID, "unique_dataset_id", "dataset_shortname")
		return fmt.Sprintf(`SELECT %s::text AS code, id_dataset AS id FROM gn_meta.t_datasets`, col), nil
	case Modules:
		return `SELECT module_code AS code, id_module AS id FROM gn_commons.t_modules`, nil
	case Sources:
		return `SELECT name_source AS code, id_source AS id FROM gn_synthese.t_sources`, nil
	case Organisms:
		col := pick(p.keys.OrganismsByUUID, "uuid_organisme", "nom_organisme")
		return fmt.Sprintf(`SELECT %s::text AS code, id_organisme AS id FROM utilisateurs.bib_organismes`, col), nil
	case Users:
		col := pick(p.keys.UsersByUUID, "uuid_role", "identifiant")
		return fmt.Sprintf(`SELECT %s::text AS code, id_role AS id FROM utilisateurs.t_roles`, col), nil
	case AcquisitionFrameworks:
		col := pick(p.keys.AcquisitionFrameworksByUUID, "unique_acquisition_framework_id", "acquisition_framework_name")
		return fmt.Sprintf(`SELECT %s::text AS code, id_acquisition_framework AS id FROM gn_meta.t_acquisition_frameworks`, col), nil
	case Themes:
		return `SELECT nom_theme AS code, id_theme AS id FROM taxonomie.bib_themes`, nil
	case Attributes:
		return `SELECT nom_attribut AS code, id_attribut AS id FROM taxonomie.bib_attributs`, nil
	case Taxa:
		return `SELECT DISTINCT cd_ref::text AS code, cd_ref AS id FROM taxonomie.bib_noms`, nil
	case Scinames:
		return `SELECT cd_nom::text AS code, cd_ref AS id FROM taxonomie.taxref`, nil
	}
	return "", fmt.Errorf("no single-level query for domain %s", d)
}

// Mapping implements Provider.
func (p *Postgres) Mapping(ctx context.Context, d Domain) (Mapping, error) {
	q, err := p.singleQuery(d)
	if err != nil {
		return nil, err
	}

	rows, err := p.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d, err)
	}
	defer rows.Close()

	m := make(Mapping)
	for rows.Next() {
		var (
			code *string
			id   int64
		)
		if err := rows.Scan(&code, &id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", d, err)
		}
		if code == nil {
			continue
		}
		m[*code] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", d, err)
	}
	return m, nil
}

// TypedMapping implements Provider.
func (p *Postgres) TypedMapping(ctx context.Context, d Domain, types []string) (TypedMapping, error) {
	var (
		q    string
		args []any
	)
	switch d {
	case Nomenclatures:
		q = `SELECT bnt.mnemonique AS type, tn.cd_nomenclature AS code, tn.id_nomenclature AS id
			FROM ref_nomenclatures.t_nomenclatures AS tn
				INNER JOIN ref_nomenclatures.bib_nomenclatures_types AS bnt
					ON tn.id_type = bnt.id_type`
		if len(types) > 0 {
			q += ` WHERE bnt.mnemonique = ANY($1)`
			args = append(args, types)
		}
		q += ` ORDER BY bnt.mnemonique ASC, tn.cd_nomenclature ASC`
	case Areas:
		q = `SELECT bib.type_code AS type, la.area_code AS code, la.id_area AS id
			FROM ref_geo.bib_areas_types AS bib
				JOIN ref_geo.l_areas AS la ON la.id_type = bib.id_type`
		if len(types) > 0 {
			q += ` WHERE bib.type_code = ANY($1)`
			args = append(args, types)
		}
	default:
		return nil, fmt.Errorf("no typed query for domain %s", d)
	}

	rows, err := p.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", d, err)
	}
	defer rows.Close()

	m := make(TypedMapping)
	for rows.Next() {
		var (
			kind, code string
			id         int64
		)
		if err := rows.Scan(&kind, &code, &id); err != nil {
			return nil, fmt.Errorf("scan %s: %w", d, err)
		}
		m.Set(kind, code, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", d, err)
	}
	return m, nil
}

// ServerVersion returns the PostgreSQL version string, logged at startup.
func (p *Postgres) ServerVersion(ctx context.Context) (string, error) {
	var v string
	if err := p.db.QueryRow(ctx, `SELECT version()`).Scan(&v); err != nil {
		return "", fmt.Errorf("query server version: %w", err)
	}
	return v, nil
}
