package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/openlot/openlot/openlot/database/models"
	"github.com/openlot/openlot/openlot/database/repositories"
	webmodels "github.com/openlot/openlot/server/models"
	"github.com/openlot/openlot/server/utils"
)

// ContractsMine lists contracts where the caller is buyer or seller.
func ContractsMine(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		contracts, err := webApp.App.ContractRepository.ListByUser(c.Context(), user.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list contracts")
		}
		return utils.SendSuccess(c, contracts, "")
	}
}

// ContractsDetail returns one contract, visible only to its parties and
// admins.
func ContractsDetail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid contract id", nil)
		}

		contract, err := webApp.App.ContractRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Contract not found")
			}
			return utils.SendInternalServerError(c, "Failed to get contract")
		}

		if contract.BuyerID != user.ID && contract.SellerID != user.ID && !utils.IsAdmin(c) {
			return utils.SendForbidden(c, "Not a party to this contract")
		}

		return utils.SendSuccess(c, contract, "")
	}
}

// ContractsPayments lists the payments recorded against a contract.
func ContractsPayments(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid contract id", nil)
		}

		contract, err := webApp.App.ContractRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Contract not found")
			}
			return utils.SendInternalServerError(c, "Failed to get contract")
		}
		if contract.BuyerID != user.ID && contract.SellerID != user.ID && !utils.IsAdmin(c) {
			return utils.SendForbidden(c, "Not a party to this contract")
		}

		payments, err := webApp.App.ContractRepository.ListPayments(c.Context(), contract.ID)
		if err != nil {
			return utils.SendInternalServerError(c, "Failed to list payments")
		}
		return utils.SendSuccess(c, payments, "")
	}
}

// ContractsCreatePayment records a pending payment by the buyer.
func ContractsCreatePayment(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := utils.CurrentUser(c)

		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid contract id", nil)
		}

		var req webmodels.PaymentRequest
		if err := c.BodyParser(&req); err != nil || req.Amount <= 0 {
			return utils.SendBadRequest(c, "Invalid payment request", nil)
		}
		if req.Method == "" {
			req.Method = "bank_transfer"
		}

		contract, err := webApp.App.ContractRepository.GetByID(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Contract not found")
			}
			return utils.SendInternalServerError(c, "Failed to get contract")
		}
		if contract.BuyerID != user.ID {
			return utils.SendForbidden(c, "Only the buyer can pay")
		}
		if contract.Status != models.ContractStatusPendingPayment {
			return utils.SendConflict(c, "Contract is not awaiting payment", nil)
		}

		payment := &models.Payment{
			ContractID: contract.ID,
			PayerID:    user.ID,
			Amount:     req.Amount,
			Method:     req.Method,
		}
		if err := webApp.App.ContractRepository.CreatePayment(c.Context(), payment); err != nil {
			slog.Error("Failed to create payment", slog.Any("error", err))
			return utils.SendInternalServerError(c, "Failed to create payment")
		}

		return utils.SendCreated(c, payment, "Payment recorded")
	}
}

// PaymentsConfirm marks a pending payment confirmed. Admin only; the
// confirmation writes the ledger row and may settle the contract.
func PaymentsConfirm(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid payment id", nil)
		}

		contract, err := webApp.App.ContractRepository.ConfirmPayment(c.Context(), int64(id))
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Payment not found")
			}
			return utils.SendConflict(c, err.Error(), nil)
		}

		return utils.SendSuccess(c, contract, "Payment confirmed")
	}
}

// PaymentsFail marks a pending payment failed. Admin only.
func PaymentsFail(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid payment id", nil)
		}

		if err := webApp.App.ContractRepository.FailPayment(c.Context(), int64(id)); err != nil {
			return utils.SendConflict(c, err.Error(), nil)
		}
		return utils.SendSuccess(c, nil, "Payment marked failed")
	}
}

// ContractsComplete finishes a paid contract and transfers the property
// to the buyer. Admin only.
func ContractsComplete(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return utils.SendBadRequest(c, "Invalid contract id", nil)
		}

		if err := webApp.App.ContractRepository.CompleteContract(c.Context(), int64(id)); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return utils.SendNotFound(c, "Contract not found")
			}
			return utils.SendConflict(c, err.Error(), nil)
		}

		webApp.App.SearchService.Invalidate()
		return utils.SendSuccess(c, nil, "Contract completed")
	}
}
