package handler

import (
	"github.com/gin-gonic/gin"

	appcart "github.com/xiebiao/bookshop/internal/application/cart"
	"github.com/xiebiao/bookshop/internal/interface/http/dto"
	"github.com/xiebiao/bookshop/internal/interface/http/middleware"
	"github.com/xiebiao/bookshop/pkg/response"
)

// CartHandler 购物车HTTP处理器
type CartHandler struct {
	manageCartUseCase     *appcart.ManageCartUseCase
	addLineItemUseCase    *appcart.AddLineItemUseCase
	removeLineItemUseCase *appcart.RemoveLineItemUseCase
	updateCartUseCase     *appcart.UpdateCartUseCase
}

// NewCartHandler 创建购物车处理器
func NewCartHandler(
	manageCartUseCase *appcart.ManageCartUseCase,
	addLineItemUseCase *appcart.AddLineItemUseCase,
	removeLineItemUseCase *appcart.RemoveLineItemUseCase,
	updateCartUseCase *appcart.UpdateCartUseCase,
) *CartHandler {
	return &CartHandler{
		manageCartUseCase:     manageCartUseCase,
		addLineItemUseCase:    addLineItemUseCase,
		removeLineItemUseCase: removeLineItemUseCase,
		updateCartUseCase:     updateCartUseCase,
	}
}

// CreateCart 创建购物车
// @Summary      创建购物车
// @Description  为当前登录用户创建一个空的active购物车
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Success      201 {object} response.Response{data=appcart.CartResponse} "创建成功"
// @Failure      401 {object} response.Response "未登录"
// @Router       /carts [post]
func (h *CartHandler) CreateCart(c *gin.Context) {
	resp, err := h.manageCartUseCase.Create(c.Request.Context(), middleware.MustGetCustomerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, resp)
}

// GetCart 查询购物车
// @Summary      查询购物车
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "购物车ID"
// @Success      200 {object} response.Response{data=appcart.CartResponse} "成功"
// @Failure      403 {object} response.Response "不是自己的购物车"
// @Failure      404 {object} response.Response "购物车不存在"
// @Router       /carts/{id} [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, ok := pathID(c, "id")
	if !ok {
		return
	}

	resp, err := h.manageCartUseCase.Get(c.Request.Context(), cartID, middleware.MustGetCustomerID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// UpdateCart 部分更新购物车
// @Summary      更新购物车
// @Description  只更新请求体中出现的字段（状态、总价、账单/收货地址、配送方式）
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "购物车ID"
// @Param        request body dto.UpdateCartRequest true "需要更新的字段"
// @Success      200 {object} response.Response{data=appcart.CartResponse} "更新成功"
// @Failure      400 {object} response.Response "参数错误或购物车已结算"
// @Failure      403 {object} response.Response "不是自己的购物车"
// @Failure      404 {object} response.Response "购物车或地址不存在"
// @Router       /carts/{id} [patch]
func (h *CartHandler) UpdateCart(c *gin.Context) {
	cartID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.updateCartUseCase.Execute(c.Request.Context(), appcart.UpdateCartRequest{
		CartID:     cartID,
		CustomerID: middleware.MustGetCustomerID(c),
		Draft:      req.ToDraft(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// DeleteCart 删除购物车
// @Summary      删除购物车
// @Description  只能删除active且没有明细的购物车
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "购物车ID"
// @Success      200 {object} response.Response "删除成功"
// @Failure      400 {object} response.Response "购物车非空或已结算"
// @Router       /carts/{id} [delete]
func (h *CartHandler) DeleteCart(c *gin.Context) {
	cartID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.manageCartUseCase.Delete(c.Request.Context(), cartID, middleware.MustGetCustomerID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// AddLineItem 加入购物车
// @Summary      加入购物车
// @Description  图书已在购物车中时累加数量，单价按当前价格记录
// @Tags         购物车模块
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "购物车ID"
// @Param        request body dto.AddLineItemRequest true "图书和数量"
// @Success      200 {object} response.Response{data=appcart.CartResponse} "成功"
// @Failure      400 {object} response.Response "参数错误或购物车已结算"
// @Failure      404 {object} response.Response "购物车或图书不存在"
// @Router       /carts/{id}/items [post]
func (h *CartHandler) AddLineItem(c *gin.Context) {
	cartID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.AddLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.addLineItemUseCase.Execute(c.Request.Context(), appcart.AddLineItemRequest{
		CartID:     cartID,
		CustomerID: middleware.MustGetCustomerID(c),
		BookID:     req.BookID,
		Quantity:   req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// RemoveLineItem 从购物车移除
// @Summary      移除购物车明细
// @Description  数量减到0时删除整条明细
// @Tags         购物车模块
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "购物车ID"
// @Param        item_id path int true "明细ID"
// @Param        quantity query int true "移除数量"
// @Success      200 {object} response.Response{data=appcart.CartResponse} "成功"
// @Failure      400 {object} response.Response "移除数量超过明细数量"
// @Failure      404 {object} response.Response "明细不存在"
// @Router       /carts/{id}/items/{item_id} [delete]
func (h *CartHandler) RemoveLineItem(c *gin.Context) {
	cartID, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineItemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}

	var query dto.RemoveLineItemQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.removeLineItemUseCase.Execute(c.Request.Context(), appcart.RemoveLineItemRequest{
		CartID:     cartID,
		CustomerID: middleware.MustGetCustomerID(c),
		LineItemID: lineItemID,
		Quantity:   query.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}
