package settlement

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cdileep23/XNL-21BCE9435-server/internal/db"
	"github.com/cdileep23/XNL-21BCE9435-server/internal/middleware"
)

// ListMyPayments returns every payment the caller appears on, either side,
// newest first.
func ListMyPayments(c echo.Context) error {
	caller, ok := middleware.Caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	rows, err := db.Conn.Query(context.Background(),
		`SELECT id, job_id, bid_id, amount, from_id, to_id, status, created_at
         FROM payments WHERE from_id = $1 OR to_id = $1 ORDER BY created_at DESC`, caller.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch payments"})
	}
	defer rows.Close()

	payments := make([]Payment, 0)
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.JobID, &p.BidID, &p.Amount, &p.FromID, &p.ToID, &p.Status, &p.CreatedAt); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to parse record"})
		}
		payments = append(payments, p)
	}

	return c.JSON(http.StatusOK, echo.Map{"payments": payments})
}
