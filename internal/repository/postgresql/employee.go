package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

const employeeColumns = `id, company_id, full_name, batch_id, rate_per_minute::text`

func scanEmployee(row pgx.Row) (attendance.Employee, error) {
	var emp attendance.Employee
	var rate string
	if err := row.Scan(&emp.ID, &emp.CompanyID, &emp.FullName, &emp.BatchID, &rate); err != nil {
		return attendance.Employee{}, err
	}
	parsed, err := decimal.NewFromString(rate)
	if err != nil {
		return attendance.Employee{}, fmt.Errorf("invalid rate_per_minute for employee %s: %w", emp.ID, err)
	}
	emp.RatePerMinute = parsed
	return emp, nil
}

// GetByID implements attendance.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (attendance.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE id = $1 AND company_id = $2 AND deleted_at IS NULL`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Employee{}, attendance.ErrEmployeeNotFound
		}
		return attendance.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

// ListActive implements attendance.EmployeeRepository.
func (r *employeeRepositoryImpl) ListActive(ctx context.Context, companyID string, ids []string) ([]attendance.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE company_id = $1 AND employment_status = 'active' AND deleted_at IS NULL`
	args := []interface{}{companyID}
	if len(ids) > 0 {
		query += ` AND id = ANY($2)`
		args = append(args, ids)
	}
	query += ` ORDER BY full_name, id`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []attendance.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return employees, nil
}

// ListCompanyIDs implements attendance.EmployeeRepository.
func (r *employeeRepositoryImpl) ListCompanyIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `
		SELECT DISTINCT company_id
		FROM employees
		WHERE employment_status = 'active' AND deleted_at IS NULL
		ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}

	companyIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to scan company ids: %w", err)
	}
	return companyIDs, nil
}

func NewEmployeeRepository(db *database.DB) attendance.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}
