package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"dropship-hub/database"
	"dropship-hub/invoice"
	"dropship-hub/logger"
	"dropship-hub/models"
	"dropship-hub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const referralCodeAttempts = 3

func GetUsers(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	users, err := models.ListUsers(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// RegisterUser stores the profile of a user signed in with the identity provider.
// Calling it again returns the existing record.
func RegisterUser(c *gin.Context) {
	var input struct {
		Name         string `json:"name"`
		Phone        string `json:"phone" binding:"omitempty,bdphone"`
		Photo        string `json:"photo"`
		ReferralCode string `json:"referralCode"`
	}
	if !bindJSON(c, &input) {
		return
	}
	email := callerEmail(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	if existing, err := models.GetUserByEmail(ctx, email); err == nil {
		c.JSON(http.StatusOK, existing)
		return
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		respondError(c, err)
		return
	}

	code := services.NormalizeReferralCode(input.ReferralCode)
	if code != "" {
		if _, err := models.GetUserByReferralCode(ctx, code); errors.Is(err, mongo.ErrNoDocuments) {
			badRequest(c, "Referral code not found")
			return
		} else if err != nil {
			respondError(c, err)
			return
		}
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		name = c.GetString("name")
	}
	user := models.User{
		Email:          email,
		Name:           name,
		Phone:          input.Phone,
		Photo:          input.Photo,
		ReferredBy:     code,
		MyReferralUser: []models.ReferredUser{},
	}

	var err error
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		user.MyReferralCode = services.NewReferralCode()
		var created models.User
		created, err = models.CreateUser(ctx, user)
		if err == nil {
			user = created
			break
		}
		if !db.IsDuplicateKey(err) {
			break
		}
		// a concurrent sign-up with the same email wins; otherwise retry with a new code
		if existing, lookupErr := models.GetUserByEmail(ctx, email); lookupErr == nil {
			c.JSON(http.StatusOK, existing)
			return
		}
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if code != "" {
		referrer, err := services.AttributeReferral(ctx, services.NewMongoStore(), code, user, time.Now())
		if err != nil {
			logger.FromGin(c).Warn("Referral not credited", zap.String("code", code), zap.Error(err))
		} else if referrer != "" {
			logger.FromGin(c).Info("Referral credited", zap.String("referrer", referrer), zap.String("email", email))
		}
	}

	c.JSON(http.StatusCreated, user)
}

func GetMe(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, services.NewDomainError(services.CodeNotFound, "User not registered"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// GetReferralQR returns a PNG QR code of the caller's referral link
func GetReferralQR(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, services.NewDomainError(services.CodeNotFound, "User not registered"))
		return
	}

	baseURL := ""
	if deps.Config != nil {
		baseURL = deps.Config.App.BaseURL
	}
	png, err := invoice.ReferralQR(baseURL, user.MyReferralCode, 256)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func GetUserByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	caller, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if caller == nil || (!caller.IsAdmin && caller.ID != id) {
		forbidden(c)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := models.GetUserByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

type userPatch struct {
	Name  *string           `json:"name"`
	Phone *string           `json:"phone" binding:"omitempty,bdphone"`
	Photo *string           `json:"photo"`
	Store *models.StoreInfo `json:"store"`

	// admin only
	IsAdmin      *bool                `json:"isAdmin"`
	IsMember     *bool                `json:"isMember"`
	Subscription *models.Subscription `json:"subscription"`
}

// UpdateUser lets users edit their profile and store; admins may also set roles and membership
func UpdateUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch userPatch
	if !bindJSON(c, &patch) {
		return
	}
	caller, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if caller == nil || (!caller.IsAdmin && caller.ID != id) {
		forbidden(c)
		return
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		set["phone"] = *patch.Phone
	}
	if patch.Photo != nil {
		set["photo"] = *patch.Photo
	}
	if patch.Store != nil {
		set["store"] = patch.Store
	}
	if patch.IsAdmin != nil || patch.IsMember != nil || patch.Subscription != nil {
		if !caller.IsAdmin {
			forbidden(c)
			return
		}
		if patch.IsAdmin != nil {
			set["isAdmin"] = *patch.IsAdmin
		}
		if patch.IsMember != nil {
			set["isMember"] = *patch.IsMember
		}
		if patch.Subscription != nil {
			set["subscription"] = patch.Subscription
		}
	}
	if len(set) == 0 {
		badRequest(c, "Nothing to update")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := models.UpdateUser(ctx, id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
