package controllers

import (
	"net/http"
	"strings"

	"dropship-hub/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GetPackages lists active packages; admins get inactive ones too with ?all=true
func GetPackages(c *gin.Context) {
	onlyActive := true
	if c.Query("all") == "true" {
		admin, err := isAdmin(c)
		if err != nil {
			respondError(c, err)
			return
		}
		onlyActive = !admin
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pkgs, err := models.FindPackages(ctx, onlyActive)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkgs)
}

func CreatePackage(c *gin.Context) {
	var input struct {
		Name         string   `json:"name" binding:"required"`
		Price        float64  `json:"price" binding:"gte=0"`
		DurationDays int      `json:"durationDays" binding:"required,gt=0"`
		Features     []string `json:"features"`
		Active       *bool    `json:"active"`
	}
	if !bindJSON(c, &input) {
		return
	}
	active := true
	if input.Active != nil {
		active = *input.Active
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pkg, err := models.CreatePackage(ctx, models.Package{
		Name:         strings.TrimSpace(input.Name),
		Price:        input.Price,
		DurationDays: input.DurationDays,
		Features:     input.Features,
		Active:       active,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func UpdatePackage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Name         *string   `json:"name"`
		Price        *float64  `json:"price" binding:"omitempty,gte=0"`
		DurationDays *int      `json:"durationDays" binding:"omitempty,gt=0"`
		Features     *[]string `json:"features"`
		Active       *bool     `json:"active"`
	}
	if !bindJSON(c, &input) {
		return
	}

	set := bson.M{}
	if input.Name != nil {
		set["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Price != nil {
		set["price"] = *input.Price
	}
	if input.DurationDays != nil {
		set["durationDays"] = *input.DurationDays
	}
	if input.Features != nil {
		set["features"] = *input.Features
	}
	if input.Active != nil {
		set["active"] = *input.Active
	}
	if len(set) == 0 {
		badRequest(c, "Nothing to update")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	pkg, err := models.UpdatePackage(ctx, id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

// BuyPackage records a package purchase paid by mobile payment, pending admin review
func BuyPackage(c *gin.Context) {
	var input struct {
		PackageID string       `json:"packageId" binding:"required"`
		Payment   paymentInput `json:"payment" binding:"required"`
	}
	if !bindJSON(c, &input) {
		return
	}
	pkgID, err := primitive.ObjectIDFromHex(input.PackageID)
	if err != nil {
		badRequest(c, "Invalid packageId")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	purchase, err := deps.Packages.Buy(ctx, callerEmail(c), pkgID, input.Payment.model())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}

func GetPackagePurchases(c *gin.Context) {
	admin, err := isAdmin(c)
	if err != nil {
		respondError(c, err)
		return
	}
	filter := bson.M{"email": callerEmail(c)}
	if admin {
		filter = bson.M{}
	}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	purchases, err := models.FindPackagePurchases(ctx, filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

// DecidePackagePurchase approves a purchase, granting membership, or rejects it
func DecidePackagePurchase(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input struct {
		Status string `json:"status" binding:"required,oneof=Approved Rejected"`
	}
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	decision, err := deps.Packages.Decide(ctx, id, input.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, decision)
}
