package i18n

// Message keys shared by the stores.
const (
	StorageUnavailable  = "storage.unavailable"
	StorageFull         = "storage.full"
	StorageInsufficient = "storage.insufficient"
	StorageSaved        = "storage.saved"
	StorageSaveFailed   = "storage.save_failed"
	StorageLoaded       = "storage.loaded"
	StorageNotFound     = "storage.not_found"
	StorageInvalid      = "storage.invalid"
	StorageLoadFailed   = "storage.load_failed"
	StorageRemoved      = "storage.removed"
	StorageRemoveFailed = "storage.remove_failed"
	StorageCleared      = "storage.cleared"
	StorageClearFailed  = "storage.clear_failed"
	StorageImportBad    = "storage.import_invalid"
	StorageImported     = "storage.imported"
	StorageImportFailed = "storage.import_failed"

	CartInvalidProduct  = "cart.invalid_product"
	CartInvalidQuantity = "cart.invalid_quantity"
	CartFull            = "cart.full"
	CartAdded           = "cart.added"
	CartIncremented     = "cart.incremented"
	CartAddFailed       = "cart.add_failed"
	CartNotFound        = "cart.not_found"
	CartRemoved         = "cart.removed"
	CartRemoveFailed    = "cart.remove_failed"
	CartQuantityUpdated = "cart.quantity_updated"
	CartUpdateFailed    = "cart.update_failed"
	CartCleared         = "cart.cleared"
	CartClearFailed     = "cart.clear_failed"

	WishlistInvalidProduct = "wishlist.invalid_product"
	WishlistAlreadyPresent = "wishlist.already_present"
	WishlistFull           = "wishlist.full"
	WishlistAdded          = "wishlist.added"
	WishlistAddFailed      = "wishlist.add_failed"
	WishlistNotFound       = "wishlist.not_found"
	WishlistRemoved        = "wishlist.removed"
	WishlistRemoveFailed   = "wishlist.remove_failed"
	WishlistCleared        = "wishlist.cleared"
	WishlistClearFailed    = "wishlist.clear_failed"
	WishlistInvalidID      = "wishlist.invalid_id"
	WishlistMoved          = "wishlist.moved"
	WishlistMoveFailed     = "wishlist.move_failed"
	WishlistImportBad      = "wishlist.import_invalid"
	WishlistImported       = "wishlist.imported"
	WishlistImportFailed   = "wishlist.import_failed"

	TitleSuccess       = "notify.title.success"
	TitleError         = "notify.title.error"
	TitleCart          = "notify.title.cart"
	TitleCartError     = "notify.title.cart_error"
	TitleWishlist      = "notify.title.wishlist"
	TitleWishlistError = "notify.title.wishlist_error"
	TitleStorage       = "notify.title.storage"
	TitleStorageError  = "notify.title.storage_error"
)
