package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": [
        "http"
    ],
    "paths": {
        "/food-items": {
            "get": {
                "tags": [
                    "Catalog"
                ],
                "summary": "List food items",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/login": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Log in",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Logged in"
                    },
                    "400": {
                        "description": "Missing fields"
                    },
                    "401": {
                        "description": "Invalid credentials"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Credentials"
                        }
                    }
                ]
            }
        },
        "/register": {
            "post": {
                "tags": [
                    "Authentication"
                ],
                "summary": "Register",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Registered"
                    },
                    "400": {
                        "description": "Missing fields or username taken"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "credentials",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Credentials"
                        }
                    }
                ]
            }
        },
        "/cart/{username}": {
            "get": {
                "tags": [
                    "Cart"
                ],
                "summary": "Get a user's cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "username",
                        "type": "string",
                        "required": true
                    }
                ]
            }
        },
        "/cart/{username}/update": {
            "post": {
                "tags": [
                    "Cart"
                ],
                "summary": "Set one item's quantity",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "Updated cart"
                    },
                    "400": {
                        "description": "Missing fields"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "path",
                        "name": "username",
                        "type": "string",
                        "required": true
                    },
                    {
                        "in": "body",
                        "name": "item",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CartItemUpdate"
                        }
                    }
                ]
            }
        },
        "/cart": {
            "post": {
                "tags": [
                    "Cart"
                ],
                "summary": "Replace a user's cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "cart",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CartReplace"
                        }
                    }
                ]
            }
        },
        "/purchase": {
            "post": {
                "tags": [
                    "Cart"
                ],
                "summary": "Purchase and clear a user's cart",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                },
                "consumes": [
                    "application/json"
                ],
                "parameters": [
                    {
                        "in": "body",
                        "name": "purchase",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/Purchase"
                        }
                    }
                ]
            }
        },
        "/users": {
            "get": {
                "tags": [
                    "Users"
                ],
                "summary": "List registered usernames",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        },
        "/health": {
            "get": {
                "tags": [
                    "Health"
                ],
                "summary": "Health check",
                "produces": [
                    "application/json"
                ],
                "responses": {
                    "200": {
                        "description": "OK"
                    }
                }
            }
        }
    },
    "definitions": {
        "Credentials": {
            "type": "object",
            "required": [
                "username",
                "password"
            ],
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "CartItemUpdate": {
            "type": "object",
            "required": [
                "item",
                "quantity"
            ],
            "properties": {
                "item": {
                    "type": "string"
                },
                "quantity": {
                    "type": "integer"
                }
            }
        },
        "CartReplace": {
            "type": "object",
            "required": [
                "username"
            ],
            "properties": {
                "username": {
                    "type": "string"
                },
                "cart": {
                    "type": "object",
                    "additionalProperties": {
                        "type": "integer"
                    }
                }
            }
        },
        "Purchase": {
            "type": "object",
            "required": [
                "username"
            ],
            "properties": {
                "username": {
                    "type": "string"
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and JWT token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:3000",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "FoodCart API",
	Description:      "Food catalog, accounts and shopping carts",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
