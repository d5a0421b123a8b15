package rest

import (
	"net/http"

	"socialmart-be/internal/auth"
	"socialmart-be/internal/product"

	"github.com/gin-gonic/gin"
)

// listOptions reads the catalogue filters. Parameter names follow the
// storefront client.
func listOptions(c *gin.Context) (product.ListOptions, error) {
	opts := product.ListOptions{
		Category:    c.Query("category"),
		Subcategory: c.Query("subcategory"),
		ProductType: c.Query("productType"),
		SellerID:    c.Query("sellerId"),
		Search:      c.Query("searchQuery"),
		Tags:        queryList(c, "tags"),
		Sort:        product.SortBy(c.Query("sortBy")),
	}

	var err error
	if opts.MinPrice, err = queryDecimal(c, "minPrice"); err != nil {
		return opts, err
	}
	if opts.MaxPrice, err = queryDecimal(c, "maxPrice"); err != nil {
		return opts, err
	}
	if opts.MinRating, err = queryDecimal(c, "rating"); err != nil {
		return opts, err
	}
	if opts.InStock, err = queryBool(c, "inStock"); err != nil {
		return opts, err
	}
	if opts.Sponsored, err = queryBool(c, "isSponsored"); err != nil {
		return opts, err
	}
	if opts.Page, err = queryInt(c, "page"); err != nil {
		return opts, err
	}
	if opts.Limit, err = queryInt(c, "limit"); err != nil {
		return opts, err
	}
	return opts, nil
}

func (h *handler) listProducts(c *gin.Context) {
	opts, err := listOptions(c)
	if err != nil {
		respondError(c, err)
		return
	}

	page, err := h.svc.Products.List(c.Request.Context(), opts)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *handler) searchProducts(c *gin.Context) {
	var in product.SearchInput
	if !bindJSON(c, &in) {
		return
	}

	res, err := h.svc.Products.Search(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) getProduct(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}

	// Anonymous reads are not recorded as views.
	viewer := product.View{
		Source:    c.Query("source"),
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if p, ok := auth.PrincipalFrom(c.Request.Context()); ok {
		viewer.UserID = p.ID
	}

	p, err := h.svc.Products.Get(c.Request.Context(), id, viewer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) createProduct(c *gin.Context) {
	var in product.CreateInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.svc.Products.Create(c.Request.Context(), principal(c).ID, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}
	var in product.UpdateInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.svc.Products.Update(c.Request.Context(), principal(c).ID, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}

	if err := h.svc.Products.Delete(c.Request.Context(), principal(c).ID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

func (h *handler) priceHistory(c *gin.Context) {
	id, ok := pathID(c, "id", product.ErrProductNotFound)
	if !ok {
		return
	}

	points, err := h.svc.Products.PriceHistory(c.Request.Context(), id, c.Query("period"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}
