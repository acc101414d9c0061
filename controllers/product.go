package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"dropship-hub/models"
	"dropship-hub/services"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
)

type productInput struct {
	Name         string               `json:"name" binding:"required"`
	Category     string               `json:"category"`
	Section      string               `json:"section"`
	Thumbnail    string               `json:"thumbnail"`
	Description  string               `json:"description"`
	Sizes        []models.SizeVariant `json:"sizes" binding:"required,min=1,dive"`
	Colors       []string             `json:"colors"`
	SliderImages []string             `json:"sliderImages"`
}

type productPatch struct {
	Name         *string               `json:"name"`
	Category     *string               `json:"category"`
	Section      *string               `json:"section"`
	Thumbnail    *string               `json:"thumbnail"`
	Description  *string               `json:"description"`
	Sizes        *[]models.SizeVariant `json:"sizes"`
	Colors       *[]string             `json:"colors"`
	SliderImages *[]string             `json:"sliderImages"`
}

func validateSizes(sizes []models.SizeVariant) error {
	if len(sizes) == 0 {
		return services.Invalid("At least one size is required")
	}
	seen := map[string]bool{}
	for _, s := range sizes {
		if s.Price < 0 || s.BuyPrice < 0 || s.Stock < 0 {
			return services.Invalid("Price, buy price and stock cannot be negative")
		}
		if seen[s.Size] {
			return services.Invalid("Duplicate size: " + s.Size)
		}
		seen[s.Size] = true
	}
	return nil
}

// GetProducts lists products. Prices are only shown to members and admins.
func GetProducts(c *gin.Context) {
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	keyword := c.Query("q")
	if keyword == "" {
		keyword = c.Query("keyword")
	}
	products, err := models.FindProducts(ctx, services.ProductFilter(c.Query("category"), c.Query("section"), keyword))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, services.PriceView(user, products))
}

func GetProductByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	user, err := currentUser(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := models.GetProductByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if !services.CanSeePrices(user) {
		product = services.HidePrices(product)
	}
	c.JSON(http.StatusOK, product)
}

func GetCategories(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	categories, err := models.DistinctCategories(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// AddProduct accepts JSON, or multipart with a "data" JSON field plus
// "thumbnail" and "slider_images" files
func AddProduct(c *gin.Context) {
	var input productInput
	multipartForm := strings.HasPrefix(c.ContentType(), "multipart/")

	if multipartForm {
		if err := json.Unmarshal([]byte(c.PostForm("data")), &input); err != nil {
			badRequest(c, "Invalid product data")
			return
		}
		if strings.TrimSpace(input.Name) == "" {
			badRequest(c, "name is required")
			return
		}
	} else if !bindJSON(c, &input) {
		return
	}
	if err := validateSizes(input.Sizes); err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if multipartForm {
		if fh, err := c.FormFile("thumbnail"); err == nil {
			url, err := uploadImage(ctx, fh, "products")
			if err != nil {
				respondError(c, err)
				return
			}
			input.Thumbnail = url
		}
		if form, err := c.MultipartForm(); err == nil {
			for _, fh := range form.File["slider_images"] {
				url, err := uploadImage(ctx, fh, "products/slider")
				if err != nil {
					respondError(c, err)
					return
				}
				input.SliderImages = append(input.SliderImages, url)
			}
		}
	}

	product, err := models.AddProduct(ctx, models.Product{
		Name:         strings.TrimSpace(input.Name),
		Category:     input.Category,
		Section:      input.Section,
		Thumbnail:    input.Thumbnail,
		Description:  input.Description,
		Sizes:        services.WithDerivedProfit(input.Sizes),
		Colors:       input.Colors,
		SliderImages: input.SliderImages,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch productPatch
	if !bindJSON(c, &patch) {
		return
	}

	set := bson.M{}
	if patch.Name != nil {
		if strings.TrimSpace(*patch.Name) == "" {
			badRequest(c, "name cannot be empty")
			return
		}
		set["name"] = strings.TrimSpace(*patch.Name)
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Section != nil {
		set["section"] = *patch.Section
	}
	if patch.Thumbnail != nil {
		set["thumbnail"] = *patch.Thumbnail
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Sizes != nil {
		if err := validateSizes(*patch.Sizes); err != nil {
			respondError(c, err)
			return
		}
		set["sizes"] = services.WithDerivedProfit(*patch.Sizes)
	}
	if patch.Colors != nil {
		set["colors"] = *patch.Colors
	}
	if patch.SliderImages != nil {
		set["sliderImages"] = *patch.SliderImages
	}
	if len(set) == 0 {
		badRequest(c, "Nothing to update")
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	product, err := models.UpdateProduct(ctx, id, set)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := models.DeleteProduct(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}
